package llm_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/venyro/pkg/llm"
)

var _ = Describe("HistoryPolicy", func() {
	var policy llm.HistoryPolicy

	BeforeEach(func() {
		policy = llm.HistoryPolicy{MaxTurns: 4}
	})

	It("returns the history unchanged when within bounds", func() {
		history := []llm.Turn{
			llm.NewTextTurn(llm.RoleUser, "Summarize my strategy"),
			llm.NewTextTurn(llm.RoleModel, "{\"reply\":\"Sure\"}"),
			llm.NewTextTurn(llm.RoleUser, "Focus on pricing"),
		}

		kept, err := policy.Apply(history)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept).To(Equal(history))
	})

	It("rejects an empty history", func() {
		_, err := policy.Apply(nil)
		Expect(errors.Is(err, llm.ErrInvalidHistory)).To(BeTrue())
	})

	It("rejects unknown roles", func() {
		_, err := policy.Apply([]llm.Turn{llm.NewTextTurn("assistant", "hi")})
		Expect(errors.Is(err, llm.ErrInvalidHistory)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("assistant"))
	})

	It("rejects turns without text", func() {
		_, err := policy.Apply([]llm.Turn{{Role: llm.RoleUser, Parts: []llm.Part{{Text: "  "}}}})
		Expect(errors.Is(err, llm.ErrInvalidHistory)).To(BeTrue())
	})

	It("keeps only the most recent turns and starts on a user turn", func() {
		var history []llm.Turn
		for i := range 6 {
			history = append(history,
				llm.NewTextTurn(llm.RoleUser, fmt.Sprintf("question %d", i)),
				llm.NewTextTurn(llm.RoleModel, fmt.Sprintf("answer %d", i)),
			)
		}

		kept, err := policy.Apply(history)
		Expect(err).NotTo(HaveOccurred())
		// The last four turns start with a user turn, so nothing else is dropped.
		Expect(kept).To(HaveLen(4))
		Expect(kept[0].Role).To(Equal(llm.RoleUser))
		Expect(kept[0].Text()).To(Equal("question 4"))
		Expect(kept[3].Text()).To(Equal("answer 5"))
	})

	It("drops a leading model turn left over from truncation", func() {
		history := []llm.Turn{
			llm.NewTextTurn(llm.RoleUser, "q1"),
			llm.NewTextTurn(llm.RoleModel, "a1"),
			llm.NewTextTurn(llm.RoleUser, "q2"),
			llm.NewTextTurn(llm.RoleModel, "a2"),
			llm.NewTextTurn(llm.RoleUser, "q3"),
		}

		kept, err := policy.Apply(history)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept).To(HaveLen(3))
		Expect(kept[0].Text()).To(Equal("q2"))
	})

	It("falls back to the default bound", func() {
		history := make([]llm.Turn, 0, llm.DefaultMaxHistoryTurns+1)
		for range llm.DefaultMaxHistoryTurns + 1 {
			history = append(history, llm.NewTextTurn(llm.RoleUser, "again"))
		}

		kept, err := llm.HistoryPolicy{}.Apply(history)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept).To(HaveLen(llm.DefaultMaxHistoryTurns))
	})
})

var _ = Describe("Turn", func() {
	It("concatenates all part text", func() {
		turn := llm.Turn{Role: llm.RoleUser, Parts: []llm.Part{{Text: "Hello, "}, {Text: "Venyro"}}}
		Expect(turn.Text()).To(Equal("Hello, Venyro"))
	})
})

var _ = Describe("ProviderError", func() {
	It("is discoverable through wrapping", func() {
		err := fmt.Errorf("calling provider: %w", &llm.ProviderError{StatusCode: 503, Status: "UNAVAILABLE", Message: "The model is overloaded."})

		pe, ok := llm.AsProviderError(err)
		Expect(ok).To(BeTrue())
		Expect(pe.StatusCode).To(Equal(503))
		Expect(err.Error()).To(ContainSubstring("UNAVAILABLE"))
	})
})
