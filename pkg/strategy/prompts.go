package strategy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"text/template"
)

// noContext is rendered in place of an empty previous context.
const noContext = "N/A"

// RegistrationPayload is the payload of a registrationStep action.
type RegistrationPayload struct {
	Step    string         `json:"step"`
	Answer  string         `json:"answer"`
	Profile map[string]any `json:"profile,omitempty"`
}

// InferencePayload is the payload of an inferStrategy action. On the wire it
// is either a bare JSON string or an object with a concept field.
type InferencePayload struct {
	Concept string `json:"concept"`
}

func (p *InferencePayload) UnmarshalJSON(data []byte) error {
	var concept string
	if err := json.Unmarshal(data, &concept); err == nil {
		p.Concept = concept
		return nil
	}

	type alias InferencePayload
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = InferencePayload(obj)
	return nil
}

// StrategyPayload is the payload of a generateStrategy action.
type StrategyPayload struct {
	ProductName string `json:"productName"`
	Concept     string `json:"concept"`
	Vision      string `json:"vision"`
	ValueProp   string `json:"valueProp"`
	Market      string `json:"market"`
	Tech        string `json:"tech"`
	Revenue     string `json:"revenue"`
	GTM         string `json:"gtm"`
}

// BlueprintPayload is the payload of a generateBlueprint action.
type BlueprintPayload struct {
	ProductName string          `json:"productName"`
	Strategy    json.RawMessage `json:"strategy"`
}

var (
	registrationTmpl = template.Must(template.New("registrationStep").Parse(
		`You are the onboarding assistant for Venyro, a product strategy studio.
The user is completing registration step "{{.Step}}".
Their answer was: "{{.Answer}}"
Profile collected so far: {{.Profile}}

Decide whether the answer is valid for this step. If it is, extract the value
for the profile field it fills and name the next step. Reply to the user in
one or two friendly sentences. Set complete to true only when every profile
field (name, email, company, role) has been collected.`))

	inferenceTmpl = template.Must(template.New("inferStrategy").Parse(
		`You are a venture analyst. Evaluate the following product concept:

"{{.Concept}}"

Score its viability from 0 to 100, suggest a short memorable product name, and
draft one or two sentences for each strategic pillar: vision, value
proposition, target market, technology, revenue model and go-to-market.`))

	strategyTmpl = template.Must(template.New("generateStrategy").Parse(
		`You are a senior strategy consultant. Write a complete business strategy
for the product "{{.ProductName}}".

Concept: {{.Concept}}
Vision: {{.Vision}}
Value proposition: {{.ValueProp}}
Target market: {{.Market}}
Technology: {{.Tech}}
Revenue model: {{.Revenue}}
Go-to-market: {{.GTM}}

Previous context: {{.Context}}

Include a tagline, an executive summary, the target audience, a market
analysis with TAM, SAM, SOM and trends, a SWOT analysis, the main competitors,
revenue streams, go-to-market steps, key risks with mitigations and KPIs.`))

	blueprintTmpl = template.Must(template.New("generateBlueprint").Parse(
		`You are a technical program lead. Turn the following strategy for
"{{.ProductName}}" into an execution blueprint.

Strategy:
{{.Strategy}}

Previous context: {{.Context}}

Give an overview, delivery phases with timelines, objectives and deliverables,
a technology stack with rationale per layer, the core team roles, a budget
with an itemized breakdown, and success metrics.`))
)

// buildPrompt renders the single-prompt template for a and returns the text.
func buildPrompt(a Action, payload json.RawMessage, promptContext string) (string, error) {
	ctxText := strings.TrimSpace(promptContext)
	if ctxText == "" {
		ctxText = noContext
	}

	switch a {
	case RegistrationStep:
		var p RegistrationPayload
		if err := decodePayload(payload, &p); err != nil {
			return "", err
		}
		profile, err := json.Marshal(p.Profile)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if p.Profile == nil {
			profile = []byte("{}")
		}
		return render(registrationTmpl, map[string]string{
			"Step":    p.Step,
			"Answer":  p.Answer,
			"Profile": string(profile),
		})

	case InferStrategy:
		var p InferencePayload
		if err := decodePayload(payload, &p); err != nil {
			return "", err
		}
		if strings.TrimSpace(p.Concept) == "" {
			return "", fmt.Errorf("%w: concept is required", ErrInvalidPayload)
		}
		return render(inferenceTmpl, p)

	case GenerateStrategy:
		var p StrategyPayload
		if err := decodePayload(payload, &p); err != nil {
			return "", err
		}
		return render(strategyTmpl, struct {
			StrategyPayload
			Context string
		}{p, ctxText})

	case GenerateBlueprint:
		var p BlueprintPayload
		if err := decodePayload(payload, &p); err != nil {
			return "", err
		}
		strategy := "{}"
		if len(bytes.TrimSpace(p.Strategy)) > 0 {
			strategy = string(p.Strategy)
		}
		return render(blueprintTmpl, map[string]string{
			"ProductName": p.ProductName,
			"Strategy":    strategy,
			"Context":     ctxText,
		})

	case RefineBlueprint, ChatWithStrategy:
		return "", fmt.Errorf("%s replays history and has no prompt template", a)
	}

	return "", &UnsupportedActionError{Name: a.String()}
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "payload"
			}
			return fmt.Errorf("%w: %s must be %s", ErrInvalidPayload, field, typeJSONKind(typeErr.Type))
		}
		return fmt.Errorf("%w: payload could not be decoded", ErrInvalidPayload)
	}
	return nil
}

// typeJSONKind names the JSON type a Go type is decoded from.
func typeJSONKind(t reflect.Type) string {
	if t == nil {
		return "a different type"
	}

	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	}
	return "a different type"
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
