package strategy_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/genai"

	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/retry"
	"github.com/papercomputeco/venyro/pkg/strategy"
	testutils "github.com/papercomputeco/venyro/pkg/utils/test"
)

const inferenceResponse = `{"score":82,"suggestedName":"Leafwise","pillars":{"vision":"v","valueProp":"vp","market":"m","tech":"t","revenue":"r","gtm":"g"}}`

func promptOf(req *llm.GenerateRequest) string {
	Expect(req.Contents).To(HaveLen(1))
	Expect(req.Contents[0].Role).To(Equal(llm.RoleUser))
	return req.Contents[0].Text()
}

func noSleep(context.Context, time.Duration) error { return nil }

var _ = Describe("Service", func() {
	var (
		gen *testutils.MockGenerator
		svc *strategy.Service
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		gen = testutils.NewMockGenerator()

		var err error
		svc, err = strategy.New(strategy.Config{
			Generator: gen,
			Model:     "gemini-2.5-flash",
			Retry:     retry.Config{MaxAttempts: 3, InitialDelay: time.Second, Sleep: noSleep},
			History:   llm.HistoryPolicy{MaxTurns: 4},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a generator", func() {
		_, err := strategy.New(strategy.Config{})
		Expect(err).To(HaveOccurred())
	})

	Describe("inferStrategy", func() {
		It("prompts with the concept and returns the provider JSON verbatim", func() {
			gen.Responses = []string{inferenceResponse}

			result, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{
				Payload: json.RawMessage(`"A subscription box for rare teas"`),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(result.Data)).To(Equal(inferenceResponse))
			Expect(result.Attempts).To(Equal(1))

			Expect(gen.Calls()).To(Equal(1))
			req := gen.Requests()[0]
			Expect(req.Model).To(Equal("gemini-2.5-flash"))
			Expect(promptOf(req)).To(ContainSubstring("A subscription box for rare teas"))

			Expect(req.Schema.Type).To(Equal(genai.TypeObject))
			Expect(req.Schema.Required).To(ConsistOf("score", "suggestedName", "pillars"))
			pillars := req.Schema.Properties["pillars"]
			Expect(pillars).NotTo(BeNil())
			Expect(pillars.Required).To(ConsistOf("vision", "valueProp", "market", "tech", "revenue", "gtm"))
		})

		It("accepts an object payload", func() {
			gen.Responses = []string{inferenceResponse}

			_, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{
				Payload: json.RawMessage(`{"concept":"Drone-delivered coffee"}`),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(promptOf(gen.Requests()[0])).To(ContainSubstring("Drone-delivered coffee"))
		})

		It("names the field of a mistyped payload value", func() {
			_, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{
				Payload: json.RawMessage(`{"concept":5}`),
			})
			Expect(errors.Is(err, strategy.ErrInvalidPayload)).To(BeTrue())
			Expect(err.Error()).To(Equal("invalid payload: concept must be a string"))
			Expect(gen.Calls()).To(BeZero())
		})

		It("rejects an empty concept without calling the provider", func() {
			_, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{
				Payload: json.RawMessage(`"   "`),
			})
			Expect(errors.Is(err, strategy.ErrInvalidPayload)).To(BeTrue())
			Expect(gen.Calls()).To(BeZero())
		})
	})

	Describe("generateStrategy", func() {
		BeforeEach(func() {
			gen.Responses = []string{`{"productName":"Acme"}`}
		})

		It("renders N/A when no previous context is given", func() {
			_, _ = svc.Execute(ctx, strategy.GenerateStrategy, strategy.Input{
				Payload: json.RawMessage(`{"productName":"Acme","concept":"Rocket skates"}`),
			})

			Expect(gen.Calls()).To(Equal(1))
			prompt := promptOf(gen.Requests()[0])
			Expect(prompt).To(ContainSubstring("Previous context: N/A"))
			Expect(prompt).To(ContainSubstring("Acme"))
			Expect(prompt).To(ContainSubstring("Rocket skates"))
		})

		It("embeds the previous context when given", func() {
			_, _ = svc.Execute(ctx, strategy.GenerateStrategy, strategy.Input{
				Payload: json.RawMessage(`{"productName":"Acme"}`),
				Context: "Targeting coyotes",
			})

			Expect(promptOf(gen.Requests()[0])).To(ContainSubstring("Previous context: Targeting coyotes"))
		})

		It("reports a contract violation for a partial strategy", func() {
			result, err := svc.Execute(ctx, strategy.GenerateStrategy, strategy.Input{
				Payload: json.RawMessage(`{"productName":"Acme"}`),
			})

			Expect(errors.Is(err, strategy.ErrContractViolation)).To(BeTrue())
			Expect(errors.Is(err, strategy.ErrInvalidOutput)).To(BeTrue())
			Expect(result).NotTo(BeNil())
			Expect(result.Attempts).To(Equal(1))
		})
	})

	Describe("generateBlueprint", func() {
		It("embeds the strategy JSON in the prompt", func() {
			gen.Responses = []string{`{}`}

			_, _ = svc.Execute(ctx, strategy.GenerateBlueprint, strategy.Input{
				Payload: json.RawMessage(`{"productName":"Acme","strategy":{"tagline":"Go fast"}}`),
			})

			prompt := promptOf(gen.Requests()[0])
			Expect(prompt).To(ContainSubstring(`{"tagline":"Go fast"}`))
			Expect(prompt).To(ContainSubstring("Previous context: N/A"))
			Expect(gen.Requests()[0].Schema.Required).To(ContainElements("phases", "techStack", "budget"))
		})
	})

	Describe("registrationStep", func() {
		It("includes the step, answer and profile", func() {
			gen.Responses = []string{`{"reply":"Thanks!","isValid":true,"complete":false,"field":"name","value":"Ada","nextStep":"email"}`}

			result, err := svc.Execute(ctx, strategy.RegistrationStep, strategy.Input{
				Payload: json.RawMessage(`{"step":"name","answer":"Ada","profile":{"company":"Analytical"}}`),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.HistoryTurns).To(BeZero())

			prompt := promptOf(gen.Requests()[0])
			Expect(prompt).To(ContainSubstring(`"name"`))
			Expect(prompt).To(ContainSubstring("Ada"))
			Expect(prompt).To(ContainSubstring(`{"company":"Analytical"}`))
		})

		It("rejects a payload that is not an object", func() {
			_, err := svc.Execute(ctx, strategy.RegistrationStep, strategy.Input{
				Payload: json.RawMessage(`[1,2]`),
			})
			Expect(errors.Is(err, strategy.ErrInvalidPayload)).To(BeTrue())
			Expect(err.Error()).To(Equal("invalid payload: payload must be an object"))
			Expect(gen.Calls()).To(BeZero())
		})

		It("names nested fields of a mistyped payload", func() {
			_, err := svc.Execute(ctx, strategy.RegistrationStep, strategy.Input{
				Payload: json.RawMessage(`{"step":"name","answer":["Ada"]}`),
			})
			Expect(err).To(MatchError("invalid payload: answer must be a string"))
		})
	})

	Describe("history replay", func() {
		var history []llm.Turn

		BeforeEach(func() {
			gen.Responses = []string{`{"reply":"Lower the price","suggestedActions":["Run a survey"]}`}
			history = testutils.NewTestHistory("one", "two", "three", "four", "five")
		})

		It("forwards the history as the request contents", func() {
			result, err := svc.Execute(ctx, strategy.ChatWithStrategy, strategy.Input{
				History: history[:3],
				Context: "Strategy for Acme",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.HistoryTurns).To(Equal(3))

			req := gen.Requests()[0]
			Expect(req.Contents).To(Equal(history[:3]))
			Expect(req.SystemInstruction).To(Equal("Strategy for Acme"))
			Expect(req.Schema.Required).To(ConsistOf("reply", "suggestedActions"))
		})

		It("truncates to the most recent turns starting with a user turn", func() {
			_, err := svc.Execute(ctx, strategy.ChatWithStrategy, strategy.Input{History: history})
			Expect(err).NotTo(HaveOccurred())

			contents := gen.Requests()[0].Contents
			Expect(contents).To(HaveLen(3))
			Expect(contents[0].Text()).To(Equal("three"))
			Expect(contents[0].Role).To(Equal(llm.RoleUser))
		})

		It("rejects an empty history for refineBlueprint", func() {
			_, err := svc.Execute(ctx, strategy.RefineBlueprint, strategy.Input{})
			Expect(errors.Is(err, strategy.ErrInvalidPayload)).To(BeTrue())
			Expect(errors.Is(err, llm.ErrInvalidHistory)).To(BeTrue())
			Expect(gen.Calls()).To(BeZero())
		})
	})

	Describe("provider failures", func() {
		It("retries overloads and reports the attempt count", func() {
			gen.Errors = []error{&llm.ProviderError{StatusCode: 503, Message: "overloaded"}, nil}
			gen.Responses = []string{"", inferenceResponse}

			result, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{
				Payload: json.RawMessage(`"tea"`),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Attempts).To(Equal(2))
		})

		It("returns the exhausted provider error unchanged", func() {
			overloaded := &llm.ProviderError{StatusCode: 429, Message: "slow down"}
			gen.Errors = []error{overloaded, overloaded, overloaded}
			gen.Responses = []string{""}

			result, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{
				Payload: json.RawMessage(`"tea"`),
			})
			Expect(err).To(BeIdenticalTo(overloaded))
			Expect(result.Attempts).To(Equal(3))
		})

		Describe("attempt outcomes", func() {
			var outcomes []strategy.AttemptOutcome

			BeforeEach(func() {
				outcomes = nil
				var err error
				svc, err = strategy.New(strategy.Config{
					Generator: gen,
					Retry:     retry.Config{MaxAttempts: 3, InitialDelay: time.Second, Sleep: noSleep},
					OnAttempt: func(a strategy.Action, outcome strategy.AttemptOutcome) {
						Expect(a).To(Equal(strategy.InferStrategy))
						outcomes = append(outcomes, outcome)
					},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("reports retried calls and the final success", func() {
				unavailable := &llm.ProviderError{StatusCode: 503, Message: "overloaded"}
				gen.Errors = []error{unavailable, unavailable}
				gen.Responses = []string{"", "", inferenceResponse}

				_, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{Payload: json.RawMessage(`"tea"`)})
				Expect(err).NotTo(HaveOccurred())
				Expect(outcomes).To(Equal([]strategy.AttemptOutcome{
					strategy.AttemptRetried, strategy.AttemptRetried, strategy.AttemptSucceeded,
				}))
			})

			It("reports a final failure after exhausting retries", func() {
				limited := &llm.ProviderError{StatusCode: 429, Message: "slow down"}
				gen.Errors = []error{limited, limited, limited}

				_, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{Payload: json.RawMessage(`"tea"`)})
				Expect(err).To(HaveOccurred())
				Expect(outcomes).To(Equal([]strategy.AttemptOutcome{
					strategy.AttemptRetried, strategy.AttemptRetried, strategy.AttemptFailed,
				}))
			})

			It("reports nothing when the payload is rejected", func() {
				_, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{Payload: json.RawMessage(`""`)})
				Expect(err).To(HaveOccurred())
				Expect(outcomes).To(BeEmpty())
			})
		})

		It("reports malformed JSON distinctly", func() {
			gen.Responses = []string{"Sure! Here is your strategy:"}

			_, err := svc.Execute(ctx, strategy.InferStrategy, strategy.Input{
				Payload: json.RawMessage(`"tea"`),
			})
			Expect(errors.Is(err, strategy.ErrMalformedOutput)).To(BeTrue())
			Expect(errors.Is(err, strategy.ErrContractViolation)).To(BeFalse())
		})
	})
})
