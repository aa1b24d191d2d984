// Package routeadv 从节点通告中提取路由通告
//
// 节点通告（PeerAdvertisement）是 XML 文档，端点服务的参数块中可能内嵌一条
// 路由通告（RouteAdvertisement）。内嵌的路由通常省略目的节点 ID，提取时用
// 节点通告自身的 ID 填充。
//
// 提取是尽力而为的：参数块缺失、没有路由或内容格式错误时返回 nil，
// 只记录 Debug 日志，不向调用方返回错误。
//
// Cache 以目的节点 ID 为键缓存提取出的路由，容量有界（LRU）。
package routeadv
