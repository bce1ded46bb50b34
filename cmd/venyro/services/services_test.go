package services_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/cmd/venyro/services"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/eventstream/kafka"
	"github.com/papercomputeco/venyro/pkg/eventstream/nop"
	"github.com/papercomputeco/venyro/pkg/storage/inmemory"
	"github.com/papercomputeco/venyro/pkg/storage/sqlite"
)

var _ = Describe("services", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.NewDefaultConfig()
	})

	Describe("NewStorageDriver", func() {
		It("defaults to in-memory storage", func() {
			driver, err := services.NewStorageDriver(context.Background(), cfg, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer driver.Close()
			Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		})

		It("uses SQLite when a path is configured", func() {
			tmpDir, err := os.MkdirTemp("", "services-test-*")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, tmpDir)

			cfg.Storage.SQLitePath = filepath.Join(tmpDir, "venyro.db")
			driver, err := services.NewStorageDriver(context.Background(), cfg, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer driver.Close()
			Expect(driver).To(BeAssignableToTypeOf(&sqlite.SQLiteDriver{}))
		})

		It("surfaces PostgreSQL connection errors", func() {
			cfg.Storage.PostgresDSN = "postgres://venyro@127.0.0.1:1/venyro?connect_timeout=1"
			cfg.Storage.SQLitePath = "ignored.db"

			_, err := services.NewStorageDriver(context.Background(), cfg, zap.NewNop())
			Expect(err).To(MatchError(ContainSubstring("PostgreSQL")))
		})
	})

	Describe("NewPublisher", func() {
		It("is a nop without brokers", func() {
			p, err := services.NewPublisher(cfg, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
		})

		It("uses kafka when brokers are configured", func() {
			cfg.Events.KafkaBrokers = []string{"localhost:9092"}
			p, err := services.NewPublisher(cfg, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer p.Close()
			Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		})
	})

	Describe("GatewayConfig", func() {
		It("maps every gateway setting", func() {
			cfg.Gateway.Path = "/v1/actions"
			cfg.Gateway.MaxHistoryTurns = 8
			cfg.Retry.MaxAttempts = 5
			cfg.Retry.InitialDelayMs = 200
			cfg.Provider.BaseURL = "http://localhost:9999"

			gc := services.GatewayConfig(cfg, func(name string) string {
				if name == config.EnvGeminiAPIKey {
					return "env-key"
				}
				return ""
			})

			Expect(gc.ListenAddr).To(Equal(":8080"))
			Expect(gc.Path).To(Equal("/v1/actions"))
			Expect(gc.Model).To(Equal("gemini-2.5-flash"))
			Expect(gc.APIKey).To(Equal("env-key"))
			Expect(gc.ProviderBaseURL).To(Equal("http://localhost:9999"))
			Expect(gc.Timeout).To(Equal(60 * time.Second))
			Expect(gc.Retry.MaxAttempts).To(Equal(5))
			Expect(gc.Retry.InitialDelay).To(Equal(200 * time.Millisecond))
			Expect(gc.History.MaxTurns).To(Equal(8))
		})

		It("leaves the key empty when nothing provides one", func() {
			gc := services.GatewayConfig(cfg, func(string) string { return "" })
			Expect(gc.APIKey).To(BeEmpty())
		})
	})
})
