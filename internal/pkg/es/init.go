package es

import (
	"DevNest/internal/api/config"
	"DevNest/internal/pkg/logger"
	"context"
	log "log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	NotFoundCode = 404
	ConflictCode = 409
)

// NewClient 创建 Elasticsearch 客户端并确认集群可达
func NewClient(cfg config.ElasticConfig) (*elasticsearch.TypedClient, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &logger.ESTransport{
			Transport: http.DefaultTransport,
		},
	})
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}

	info, err := client.Info().Do(context.Background())
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}

	log.Info("Connected to Elasticsearch", "version", info.Version.Int, "post_index", cfg.PostIndex)
	return client, nil
}
