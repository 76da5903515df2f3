package llm

import "github.com/sashabaranov/go-openai/jsonschema"

// Response schemas enforced via the OpenAI structured output API.
// All schemas are strict: the model cannot add or omit fields.

func stringArraySchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type:  jsonschema.Array,
		Items: &jsonschema.Definition{Type: jsonschema.String},
	}
}

func extractionSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		AdditionalProperties: false,
		Required:             []string{"claims"},
		Properties: map[string]jsonschema.Definition{
			"claims": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type:                 jsonschema.Object,
					AdditionalProperties: false,
					Required:             []string{"influencerId", "claim", "originalText", "postUrl", "categories"},
					Properties: map[string]jsonschema.Definition{
						"influencerId": {Type: jsonschema.String},
						"claim":        {Type: jsonschema.String},
						"originalText": {Type: jsonschema.String},
						"postUrl":      {Type: jsonschema.String},
						"categories":   stringArraySchema(),
					},
				},
			},
		},
	}
}

func elementsSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		AdditionalProperties: false,
		Required:             []string{"elements"},
		Properties: map[string]jsonschema.Definition{
			"elements": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type:                 jsonschema.Object,
					AdditionalProperties: false,
					Required:             []string{"subject", "action", "target", "claimId"},
					Properties: map[string]jsonschema.Definition{
						"subject": stringArraySchema(),
						"action":  {Type: jsonschema.String},
						"target":  stringArraySchema(),
						"claimId": {Type: jsonschema.String},
					},
				},
			},
		},
	}
}

func stanceSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		AdditionalProperties: false,
		Required:             []string{"results"},
		Properties: map[string]jsonschema.Definition{
			"results": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type:                 jsonschema.Object,
					AdditionalProperties: false,
					Required:             []string{"direction", "strength", "articleId", "articleTitle", "articleUrl"},
					Properties: map[string]jsonschema.Definition{
						"direction":    {Type: jsonschema.String, Enum: []string{"support", "contradict", "inconclusive", "unrelated"}},
						"strength":     {Type: jsonschema.String, Enum: []string{"mild", "strong", "n/a"}},
						"articleId":    {Type: jsonschema.String},
						"articleTitle": {Type: jsonschema.String},
						"articleUrl":   {Type: jsonschema.String},
					},
				},
			},
		},
	}
}
