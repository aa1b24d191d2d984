// Package main 提供 overlay-dial 命令行工具
//
//	overlay-dial dial tcp://10.0.0.1:9701 "hello"
//	overlay-dial listen tcp://0.0.0.0:9701
//
// dial 经传输客户端建立消息器并发送一条文本消息；
// listen 运行握手应答端，打印收到的消息。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/endpoint"
	"github.com/dep2p/go-overlay/internal/core/eventbus"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/internal/core/transport"
	"github.com/dep2p/go-overlay/internal/core/transport/client"
	"github.com/dep2p/go-overlay/internal/core/transport/handshake"
	"github.com/dep2p/go-overlay/internal/core/transport/wire"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("cmd/overlay-dial")

const (
	// serviceName 消息投递的服务名
	serviceName = "overlay-dial"

	// textNamespace 文本元素命名空间
	textNamespace = "overlay-dial"
)

// options 命令行参数
type options struct {
	configFile       string
	connectTimeout   time.Duration
	handshakeTimeout time.Duration
	linger           time.Duration
	fxLog            bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("overlay-dial", flag.ContinueOnError)
	fs.StringVarP(&opts.configFile, "config", "c", "", "JSON 配置文件路径")
	fs.DurationVar(&opts.connectTimeout, "connect-timeout", 0, "物理连接超时（覆盖配置）")
	fs.DurationVar(&opts.handshakeTimeout, "handshake-timeout", 0, "握手超时（覆盖配置）")
	fs.DurationVar(&opts.linger, "linger", 500*time.Millisecond, "dial 发送后关闭前的等待时间")
	fs.BoolVar(&opts.fxLog, "fx-log", false, "输出 fx 事件日志")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "用法: overlay-dial [flags] dial <endpoint-address> [text]")
		fmt.Fprintln(os.Stderr, "      overlay-dial [flags] listen <endpoint-address>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fs.Usage()
		return errors.New("缺少子命令或地址")
	}
	addr, err := types.ParseEndpointAddress(rest[1])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts, addr.Protocol)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch rest[0] {
	case "dial":
		text := "hello"
		if len(rest) > 2 {
			text = rest[2]
		}
		return dial(ctx, cfg, opts, addr, text, out)
	case "listen":
		return listen(ctx, cfg, opts, addr, out)
	default:
		fs.Usage()
		return fmt.Errorf("未知子命令: %s", rest[0])
	}
}

// loadConfig 加载配置并应用命令行覆盖，传输协议取自目标地址
func loadConfig(opts options, protocol string) (*config.Config, error) {
	cfg := config.NewConfig()
	if opts.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(opts.configFile); err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	}
	cfg.Transport.Protocol = protocol
	if opts.connectTimeout > 0 {
		cfg.Transport.ConnectTimeout = config.Duration(opts.connectTimeout)
	}
	if opts.handshakeTimeout > 0 {
		cfg.Transport.HandshakeTimeout = config.Duration(opts.handshakeTimeout)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置错误: %w", err)
	}
	return cfg, nil
}

// ============================================================================
//                              组合根
// ============================================================================

// newApp 组装公共模块
//
// endpoint 在 client 之前声明：停止钩子逆序执行，客户端先于端点服务停止。
func newApp(cfg *config.Config, opts options, extra ...fx.Option) *fx.App {
	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(cfg.Identity.Resolve),
		eventbus.Module(),
		metrics.Module(),
		endpoint.Module(),
		transport.Module(),
	}
	modules = append(modules, extra...)

	if opts.fxLog {
		modules = append(modules, fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Zap().Named("fx")}
		}))
	} else {
		modules = append(modules, fx.NopLogger)
	}
	return fx.New(modules...)
}

// ============================================================================
//                              dial
// ============================================================================

func dial(ctx context.Context, cfg *config.Config, opts options, dest types.EndpointAddress, text string, out io.Writer) error {
	var (
		svc *endpoint.Service
		cli *client.Client
	)
	app := newApp(cfg, opts,
		client.Module(),
		fx.Populate(&svc, &cli),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn("停止失败", "err", err)
		}
	}()

	start := time.Now()
	m, err := svc.Messenger(ctx, dest)
	if err != nil {
		return fmt.Errorf("连接 %s 失败: %w", dest, err)
	}
	fmt.Fprintf(out, "已连接 %s -> %s (%s)\n", dest, m.LogicalDestinationAddress(), time.Since(start).Round(time.Millisecond))

	msg := types.NewMessage()
	msg.AddString(textNamespace, "text", text)
	if err := m.Send(msg, serviceName, ""); err != nil {
		return fmt.Errorf("发送失败: %w", err)
	}

	select {
	case <-time.After(opts.linger):
	case <-ctx.Done():
	}
	fmt.Fprintf(out, "已发送 %d 字节，连接池 %d\n", len(text), cli.PoolSize())
	return nil
}

// ============================================================================
//                              listen
// ============================================================================

// listenParams listen 需要的组件
type listenParams struct {
	fx.In

	Config  *config.Config
	Binding transport.Binding
	Service *endpoint.Service
	PeerID  types.PeerID
	GroupID types.PeerGroupID
	Metrics metrics.Reporter
}

func listen(ctx context.Context, cfg *config.Config, opts options, addr types.EndpointAddress, out io.Writer) error {
	var p listenParams
	app := newApp(cfg, opts, fx.Populate(&p))
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = p.Binding.Factory.ReleaseExternalResources()
		_ = app.Stop(stopCtx)
	}()

	p.Service.AddIncomingMessageListener(serviceName, "",
		pkgif.MessageListenerFunc(func(msg *types.Message, src, _ types.EndpointAddress) {
			if e, ok := msg.Element(textNamespace, "text"); ok {
				fmt.Fprintf(out, "%s: %s\n", src, e.Data)
			}
		}))

	l, err := p.Binding.Listen(addr.Address)
	if err != nil {
		return err
	}
	defer l.Close()

	local := p.PeerID.EndpointAddress()
	hs := handshake.Config{
		PeerID:        p.PeerID,
		GroupID:       p.GroupID,
		PublicAddress: local,
		Timeout:       cfg.Transport.HandshakeTimeout.Duration(),
	}
	resp := handshake.NewResponder(hs, func(ch pkgif.Channel, remote *wire.Welcome) {
		client.NewMessenger(ch, client.MessengerParams{
			Protocol:     p.Binding.Protocol,
			GroupID:      p.GroupID,
			LocalPeer:    p.PeerID,
			LocalAddress: local,
			Destination:  remote.PublicAddress,
			Logical:      remote.PublicAddress,
			Service:      p.Service,
			Config:       cfg.Messenger,
			Bandwidth:    p.Metrics,
		})
		logger.Info("入站连接已建立", "remote", ch.RemoteAddr().String(), "peer", remote.PeerID.ShortString())
	})

	fmt.Fprintf(out, "%s 监听 %s\n", local, p.Binding.Translator.ToEndpointAddress(l.Addr()))
	errCh := make(chan error, 1)
	go func() { errCh <- resp.Serve(l) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
