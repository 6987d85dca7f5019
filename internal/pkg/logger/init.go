package logger

import (
	"DevNest/internal/api/config"
	"io"
	log "log/slog"
	"net"
	"os"
	"time"
)

// LogWriter gin 访问日志的输出目标
var LogWriter io.Writer = os.Stdout

// InitLogger 初始化全局 slog，配置了 Logstash 地址时同时投递带 trace_id 的记录
func InitLogger(cfg config.LogstashConfig) {
	stdout := log.NewJSONHandler(os.Stdout, &log.HandlerOptions{Level: log.LevelInfo})

	var root log.Handler = stdout
	if cfg.Address != "" {
		conn, err := net.DialTimeout("tcp", cfg.Address, 3*time.Second)
		if err == nil {
			remote := log.NewJSONHandler(conn, &log.HandlerOptions{Level: log.LevelInfo}).
				WithAttrs([]log.Attr{
					log.String("target_index", cfg.Index),
					log.String("log_token", cfg.Token),
				})
			root = NewTeeHandler(stdout, &TracedOnlyHandler{next: remote})
			LogWriter = io.MultiWriter(os.Stdout, conn)
		} else {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "addr", cfg.Address, "err", err)
		}
	}

	log.SetDefault(log.New(&ContextHandler{root}))
}
