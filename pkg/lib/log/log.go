// Package log 提供统一日志接口
//
// 基于 go.uber.org/zap 封装，对外保持 key-value 风格的简洁 API：
//
//	var logger = log.Logger("core/transport/client")
//	logger.Info("连接建立", "dest", dest, "remote", logical)
//
// 环境变量：
//   - OVERLAY_LOG_LEVEL: 子系统=级别,子系统=级别,默认级别
//     示例: core/transport/client=debug,warn
//   - OVERLAY_LOG_FORMAT: text 或 json
package log

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志级别常量
const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

var (
	// base 当前全局 zap logger
	base atomic.Pointer[zap.Logger]

	// subsystemLevels 子系统级别覆盖
	subsystemLevels sync.Map // map[string]zapcore.Level

	// defaultLevel 默认级别
	defaultLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// ============================================================================
//                              全局设置
// ============================================================================

// SetDefault 替换全局 logger
//
// 已经创建的 LazyLogger 会在下一次调用时使用新的 logger。
func SetDefault(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base.Store(l)
}

// Zap 返回当前全局 zap logger（用于 fx 事件日志等需要原生 zap 的场景）
func Zap() *zap.Logger {
	return base.Load()
}

// SetLevel 设置默认日志级别
func SetLevel(level zapcore.Level) {
	defaultLevel.SetLevel(level)
}

// SetSubsystemLevel 设置指定子系统的日志级别
func SetSubsystemLevel(subsystem string, level zapcore.Level) {
	subsystemLevels.Store(subsystem, level)
}

// Discard 丢弃所有日志，主要用于测试
func Discard() {
	SetDefault(zap.NewNop())
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次调用都读取当前的全局 logger，支持运行时切换输出。
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) sugar(level zapcore.Level) *zap.SugaredLogger {
	if v, ok := subsystemLevels.Load(l.component); ok {
		if level < v.(zapcore.Level) {
			return nil
		}
	} else if !defaultLevel.Enabled(level) {
		return nil
	}
	return base.Load().Named(l.component).Sugar()
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	if s := l.sugar(zapcore.DebugLevel); s != nil {
		s.Debugw(msg, args...)
	}
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	if s := l.sugar(zapcore.InfoLevel); s != nil {
		s.Infow(msg, args...)
	}
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	if s := l.sugar(zapcore.WarnLevel); s != nil {
		s.Warnw(msg, args...)
	}
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	if s := l.sugar(zapcore.ErrorLevel); s != nil {
		s.Errorw(msg, args...)
	}
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(_ context.Context, msg string, args ...any) {
	l.Debug(msg, args...)
}

// With 返回带预设属性的 SugaredLogger
func (l *LazyLogger) With(args ...any) *zap.SugaredLogger {
	return base.Load().Named(l.component).Sugar().With(args...)
}

// ============================================================================
//                              工具函数
// ============================================================================

// TruncateID 安全截取 ID 用于日志显示
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}

// ParseLevel 解析级别字符串，无法识别时返回 Info
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(strings.ToLower(s)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// configureFromEnv 解析 OVERLAY_LOG_LEVEL
//
// 格式: 子系统=级别,子系统=级别,默认级别
func configureFromEnv() {
	spec := os.Getenv("OVERLAY_LOG_LEVEL")
	if spec == "" {
		return
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if k, v, ok := strings.Cut(part, "="); ok {
			SetSubsystemLevel(strings.TrimSpace(k), ParseLevel(v))
			continue
		}
		SetLevel(ParseLevel(part))
	}
}

// newBase 根据 OVERLAY_LOG_FORMAT 构建 zap logger
func newBase() *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(os.Getenv("OVERLAY_LOG_FORMAT"), "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	// 级别过滤在 LazyLogger 中完成，core 放行全部级别
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.DebugLevel)
	return zap.New(core)
}

func init() {
	configureFromEnv()
	base.Store(newBase())
}
