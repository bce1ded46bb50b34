package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/pkg/logger"
)

func parseLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("creates a default console logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("hello", zap.String("key", "value"))

			output := buf.String()
			Expect(output).To(ContainSubstring("hello"))
			Expect(output).To(ContainSubstring("key"))
			Expect(output).To(ContainSubstring("value"))
		})

		It("respects debug level", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("debug msg")

			Expect(buf.String()).To(ContainSubstring("debug msg"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			l := logger.NewLoggerWithWriters(false, &buf)
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("creates a JSON logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("structured", zap.Int("count", 42))

			parsed := parseLine(&buf)
			Expect(parsed["msg"]).To(Equal("structured"))
			Expect(parsed["level"]).To(Equal("info"))
			Expect(parsed["count"]).To(BeNumerically("==", 42))
			Expect(parsed).To(HaveKey("time"))
		})

		It("supports multiple writers", func() {
			var buf1, buf2 bytes.Buffer
			l := logger.New(logger.WithWriters(&buf1, &buf2))
			l.Info("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var buf1, buf2 bytes.Buffer
			l1 := logger.New(logger.WithWriter(&buf1))
			l2 := logger.New(logger.WithWriter(&buf2), logger.WithJSON(true))
			multi := logger.Multi(l1, l2)

			multi.Info("broadcast", zap.String("key", "val"))

			Expect(buf1.String()).To(ContainSubstring("broadcast"))
			Expect(parseLine(&buf2)["key"]).To(Equal("val"))
		})

		It("keeps each logger's level", func() {
			var info, debug bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&info)),
				logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
			)

			multi.Debug("detail")

			Expect(info.String()).To(BeEmpty())
			Expect(debug.String()).To(ContainSubstring("detail"))
		})

		It("supports With on multi logger", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true)))

			multi.With(zap.String("component", "gateway")).Info("hello")

			Expect(parseLine(&buf)["component"]).To(Equal("gateway"))
		})
	})

	Describe("Namespace", func() {
		It("nests keys under the namespace", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("processed", zap.Namespace("request"), zap.String("action", "inferStrategy"))

			group, ok := parseLine(&buf)["request"].(map[string]any)
			Expect(ok).To(BeTrue(), "expected 'request' namespace in JSON output")
			Expect(group["action"]).To(Equal("inferStrategy"))
		})
	})
})
