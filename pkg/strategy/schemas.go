package strategy

import "google.golang.org/genai"

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
func num() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }
func boolean() *genai.Schema { return &genai.Schema{Type: genai.TypeBoolean} }

func arrayOf(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

// object builds an object schema. Properties are required unless built with
// optionalField, and are ordered as given.
func object(props ...prop) *genai.Schema {
	s := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(props)),
	}
	for _, p := range props {
		s.Properties[p.name] = p.schema
		s.PropertyOrdering = append(s.PropertyOrdering, p.name)
		if !p.optional {
			s.Required = append(s.Required, p.name)
		}
	}
	return s
}

type prop struct {
	name     string
	schema   *genai.Schema
	optional bool
}

func field(name string, schema *genai.Schema) prop {
	return prop{name: name, schema: schema}
}

func optionalField(name string, schema *genai.Schema) prop {
	return prop{name: name, schema: schema, optional: true}
}

// SchemaFor returns the response schema declared for an action.
func SchemaFor(a Action) *genai.Schema {
	switch a {
	case RegistrationStep:
		return registrationSchema()
	case InferStrategy:
		return inferenceSchema()
	case GenerateStrategy:
		return strategySchema()
	case GenerateBlueprint, RefineBlueprint:
		return blueprintSchema()
	case ChatWithStrategy:
		return chatSchema()
	}
	return nil
}

func registrationSchema() *genai.Schema {
	return object(
		field("reply", str()),
		field("isValid", boolean()),
		field("complete", boolean()),
		optionalField("field", str()),
		optionalField("value", str()),
		optionalField("nextStep", str()),
	)
}

func inferenceSchema() *genai.Schema {
	return object(
		field("score", num()),
		field("suggestedName", str()),
		field("pillars", object(
			field("vision", str()),
			field("valueProp", str()),
			field("market", str()),
			field("tech", str()),
			field("revenue", str()),
			field("gtm", str()),
		)),
	)
}

func strategySchema() *genai.Schema {
	return object(
		field("productName", str()),
		field("tagline", str()),
		field("executiveSummary", str()),
		field("targetAudience", str()),
		field("marketAnalysis", object(
			field("tam", str()),
			field("sam", str()),
			field("som", str()),
			field("trends", arrayOf(str())),
		)),
		field("swot", object(
			field("strengths", arrayOf(str())),
			field("weaknesses", arrayOf(str())),
			field("opportunities", arrayOf(str())),
			field("threats", arrayOf(str())),
		)),
		field("competitors", arrayOf(object(
			field("name", str()),
			field("positioning", str()),
			field("weakness", str()),
		))),
		field("revenueModel", arrayOf(object(
			field("stream", str()),
			field("description", str()),
		))),
		field("goToMarket", arrayOf(str())),
		field("risks", arrayOf(object(
			field("risk", str()),
			field("mitigation", str()),
		))),
		field("kpis", arrayOf(str())),
	)
}

func blueprintSchema() *genai.Schema {
	return object(
		field("productName", str()),
		field("overview", str()),
		field("phases", arrayOf(object(
			field("name", str()),
			field("timeline", str()),
			field("objectives", arrayOf(str())),
			field("deliverables", arrayOf(str())),
		))),
		field("techStack", arrayOf(object(
			field("layer", str()),
			field("choice", str()),
			field("rationale", str()),
		))),
		field("team", arrayOf(object(
			field("role", str()),
			field("responsibilities", str()),
		))),
		field("budget", object(
			field("total", str()),
			field("breakdown", arrayOf(object(
				field("item", str()),
				field("cost", str()),
			))),
		)),
		field("successMetrics", arrayOf(str())),
	)
}

func chatSchema() *genai.Schema {
	return object(
		field("reply", str()),
		field("suggestedActions", arrayOf(str())),
	)
}
