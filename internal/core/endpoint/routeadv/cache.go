package routeadv

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-overlay/pkg/types"
)

// Cache 路由通告缓存
//
// 以目的节点 ID 为键，超出容量时淘汰最久未使用的路由。并发安全。
type Cache struct {
	routes *lru.Cache[types.PeerID, *RouteAdvertisement]
}

// NewCache 创建容量为 size 的缓存
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidCacheSize
	}
	routes, err := lru.New[types.PeerID, *RouteAdvertisement](size)
	if err != nil {
		return nil, err
	}
	return &Cache{routes: routes}, nil
}

// Put 缓存路由，没有目的节点 ID 的路由被忽略
func (c *Cache) Put(route *RouteAdvertisement) bool {
	if route == nil || route.DestPeerID.IsEmpty() {
		return false
	}
	c.routes.Add(route.DestPeerID, route)
	return true
}

// Get 查询到 peer 的路由
func (c *Cache) Get(peer types.PeerID) (*RouteAdvertisement, bool) {
	return c.routes.Get(peer)
}

// AddFromPeerAdv 从节点通告提取路由并缓存
func (c *Cache) AddFromPeerAdv(adv *PeerAdvertisement) bool {
	return c.Put(ExtractRouteAdv(adv))
}

// Remove 移除到 peer 的路由
func (c *Cache) Remove(peer types.PeerID) bool {
	return c.routes.Remove(peer)
}

// Len 缓存的路由数
func (c *Cache) Len() int { return c.routes.Len() }
