package routeadv

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/endpoint/routeadv")

// EndpointServiceClassID 端点服务参数块的模块类 ID
const EndpointServiceClassID = "urn:overlay:service:endpoint"

// ============================================================================
//                              通告结构
// ============================================================================

// PeerAdvertisement 节点通告
type PeerAdvertisement struct {
	XMLName  xml.Name          `xml:"PeerAdvertisement"`
	PeerID   types.PeerID      `xml:"PID"`
	GroupID  types.PeerGroupID `xml:"GID"`
	Name     string            `xml:"Name,omitempty"`
	Services []ServiceParam    `xml:"Svc"`
}

// ServiceParam 服务参数块
type ServiceParam struct {
	ClassID string    `xml:"MCID"`
	Param   *RawParam `xml:"Parm"`
}

// RawParam 未解析的参数内容
type RawParam struct {
	Inner []byte `xml:",innerxml"`
}

// RouteAdvertisement 路由通告
type RouteAdvertisement struct {
	XMLName    xml.Name      `xml:"RouteAdvertisement"`
	DestPeerID types.PeerID  `xml:"DstPID,omitempty"`
	Dest       AccessPoint   `xml:"Dst"`
	Hops       []AccessPoint `xml:"Hops>APA"`
}

// AccessPoint 节点的可达端点
type AccessPoint struct {
	PeerID    types.PeerID `xml:"PID,omitempty"`
	Addresses []string     `xml:"EA"`
}

// Endpoints 解析端点地址，跳过无法解析的条目
func (ap AccessPoint) Endpoints() []types.EndpointAddress {
	out := make([]types.EndpointAddress, 0, len(ap.Addresses))
	for _, s := range ap.Addresses {
		addr, err := types.ParseEndpointAddress(s)
		if err != nil {
			logger.Debug("跳过无效端点地址", "addr", s, "err", err)
			continue
		}
		out = append(out, addr)
	}
	return out
}

// Param 返回指定类 ID 的参数块
func (adv *PeerAdvertisement) Param(classID string) *RawParam {
	for i := range adv.Services {
		if adv.Services[i].ClassID == classID {
			return adv.Services[i].Param
		}
	}
	return nil
}

// ParsePeerAdvertisement 解析节点通告文档
func ParsePeerAdvertisement(data []byte) (*PeerAdvertisement, error) {
	var adv PeerAdvertisement
	if err := xml.Unmarshal(data, &adv); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAdvertisement, err)
	}
	return &adv, nil
}

// ============================================================================
//                              路由提取
// ============================================================================

// ExtractRouteAdv 从节点通告中提取内嵌的路由通告
//
// 返回的路由的 DestPeerID 总是被设置为 adv.PeerID。
func ExtractRouteAdv(adv *PeerAdvertisement) *RouteAdvertisement {
	if adv == nil {
		return nil
	}
	param := adv.Param(EndpointServiceClassID)
	if param == nil {
		logger.Debug("节点通告没有端点服务参数", "peer", adv.PeerID.ShortString())
		return nil
	}

	route, err := findRoute(param.Inner)
	if err != nil {
		logger.Debug("解析内嵌路由通告失败", "peer", adv.PeerID.ShortString(), "err", err)
		return nil
	}
	if route == nil {
		logger.Debug("端点服务参数中没有路由通告", "peer", adv.PeerID.ShortString())
		return nil
	}

	route.DestPeerID = adv.PeerID
	return route
}

// ExtractRouteAdvXML 解析节点通告文档并提取路由，格式错误时返回 nil
func ExtractRouteAdvXML(data []byte) *RouteAdvertisement {
	adv, err := ParsePeerAdvertisement(data)
	if err != nil {
		logger.Debug("解析节点通告失败", "err", err)
		return nil
	}
	return ExtractRouteAdv(adv)
}

// findRoute 在参数内容的顶层元素中查找第一个路由通告
func findRoute(inner []byte) (*RouteAdvertisement, error) {
	dec := xml.NewDecoder(bytes.NewReader(inner))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "RouteAdvertisement" {
			if err := dec.Skip(); err != nil {
				return nil, err
			}
			continue
		}

		var route RouteAdvertisement
		if err := dec.DecodeElement(&route, &start); err != nil {
			return nil, err
		}
		return &route, nil
	}
}
