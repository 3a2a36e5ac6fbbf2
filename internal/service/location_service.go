package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// UnknownAddress 在定位失败或没有任何地名字段时作为地址占位值
const UnknownAddress = "Unknown"

// Location 表示一次近似定位结果。
// 坐标为 nil 代表"定位不可用"，调用方不应将其视作错误。
type Location struct {
	Latitude  *float64
	Longitude *float64
	Address   string
}

// LocationResolver 抽象定位来源，便于在测试中替换
type LocationResolver interface {
	ResolveCurrent(ctx context.Context) Location
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// geoIPResponse 对应 ip-api.com 风格的响应字段
type geoIPResponse struct {
	Status     string  `json:"status"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// LocationService 通过外部 IP 定位服务解析当前网络出口的近似位置。
// 定位只是尽力而为的信号：网络错误、非成功状态、响应格式异常
// 都降级为 (nil, nil, "Unknown")，永远不向调用方抛错。
type LocationService struct {
	http    httpDoer
	baseURL string
}

// NewLocationService 构造 LocationService；baseURL 为空时使用 ip-api.com
func NewLocationService(baseURL string) *LocationService {
	return &LocationService{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，主要用于测试
func (s *LocationService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.http = &http.Client{Timeout: 5 * time.Second}
		return
	}
	s.http = client
}

// ResolveCurrent 解析当前出口的位置
func (s *LocationService) ResolveCurrent(ctx context.Context) Location {
	fallback := Location{Address: UnknownAddress}

	base := s.baseURL
	if base == "" {
		base = "http://ip-api.com"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/json", base), nil)
	if err != nil {
		return fallback
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback
	}

	var payload geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fallback
	}
	if payload.Status != "success" {
		return fallback
	}

	lat := payload.Lat
	lon := payload.Lon
	return Location{
		Latitude:  &lat,
		Longitude: &lon,
		Address:   joinAddress(payload.City, payload.RegionName, payload.Country),
	}
}

// joinAddress 用 ", " 拼接非空的地名字段；全部缺失时返回 Unknown
func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return UnknownAddress
	}
	return strings.Join(kept, ", ")
}
