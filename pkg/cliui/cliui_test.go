package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/venyro/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("prints a success mark and returns nil", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "Calling gateway", func() error { return nil })
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("Calling gateway"))
			Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		})

		It("propagates the error with a failure mark", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")
			err := cliui.Step(&buf, "Calling gateway", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
		})
	})

	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses seconds with one decimal above", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("JSONMarkdown", func() {
		It("indents JSON into a fenced block", func() {
			md, err := cliui.JSONMarkdown([]byte(`{"score":82,"pillars":{"gtm":"g"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(md).To(Equal("```json\n{\n  \"score\": 82,\n  \"pillars\": {\n    \"gtm\": \"g\"\n  }\n}\n```\n"))
		})

		It("rejects invalid JSON", func() {
			_, err := cliui.JSONMarkdown([]byte(`{"score":`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RenderJSON", func() {
		It("returns the raw data when it is not JSON", func() {
			out, err := cliui.RenderJSON([]byte("nope"))
			Expect(err).To(HaveOccurred())
			Expect(out).To(Equal("nope"))
		})
	})
})
