package common

import (
  "context"
  "net"
  "net/http"
  "time"

  "h12.io/socks"

  "hydra.local/social-aggregator/config"
)

type ProxySession struct {
  Proxy string
}

func (s *ProxySession) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
  dial := socks.Dial(s.Proxy)
  type result struct {
    conn net.Conn
    err  error
  }
  ch := make(chan result, 1)
  go func() {
    conn, err := dial(network, addr)
    ch <- result{conn, err}
  }()
  select {
  case <-ctx.Done():
    go func() {
      if r := <-ch; r.conn != nil {
        r.conn.Close()
      }
    }()
    return nil, ctx.Err()
  case r := <-ch:
    return r.conn, r.err
  }
}

// NewHttpClient routes through HYDRA_PROXY (socks4/socks5 uri) when it is set.
func NewHttpClient() *http.Client {
  tr := &http.Transport{
    Proxy:             http.ProxyFromEnvironment,
    DisableKeepAlives: true,
  }
  if proxy := GetEnvString("HYDRA_PROXY"); proxy != "" {
    tr.Proxy = nil
    tr.DialContext = (&ProxySession{
      Proxy: proxy,
    }).DialContext
  } else {
    tr.DialContext = (&net.Dialer{}).DialContext
  }
  return &http.Client{
    Transport: tr,
    Timeout:   time.Duration(GetEnvIntOr("HYDRA_HTTP_TIMEOUT", config.DEFAULT_HTTP_TIMEOUT)) * time.Second,
  }
}
