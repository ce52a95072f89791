package handlers

import "github.com/xeipuuv/gojsonschema"

// JSON body schemas for the RTMP lifecycle hooks and the Admin Episode API
// (spec §6). The multipart upload endpoint validates its fields directly,
// since gojsonschema has no multipart/form-data mode.
const streamStartSchema = `{
	"type": "object",
	"properties": {
		"name": { "type": "string", "minLength": 1 },
		"schedulerId": { "type": "string", "minLength": 1 }
	},
	"required": ["name", "schedulerId"]
}`

const streamStopSchema = streamStartSchema

const nginxHookSchema = `{
	"type": "object",
	"properties": {
		"streamId": { "type": "string", "minLength": 1 },
		"inputUrl": { "type": "string" },
		"outputUrl": { "type": "string" }
	},
	"required": ["streamId"]
}`

const episodeEditSchema = `{
	"type": "object",
	"properties": {
		"streamKey": { "type": "string", "minLength": 1 },
		"episodeNumber": { "type": "integer" },
		"title": { "type": "string" },
		"description": { "type": "string" },
		"adminEmail": { "type": "string", "minLength": 1 }
	},
	"required": ["streamKey", "episodeNumber", "adminEmail"]
}`

var inputSchemas = map[string]string{
	"StreamStart":  streamStartSchema,
	"StreamStop":   streamStopSchema,
	"NginxHook":    nginxHookSchema,
	"EpisodeEdit":  episodeEditSchema,
}

func compileJSONSchemas() map[string]*gojsonschema.Schema {
	compiled := make(map[string]*gojsonschema.Schema, len(inputSchemas))
	for name, text := range inputSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
		if err != nil {
			panic(err) // fix schema text
		}
		compiled[name] = schema
	}
	return compiled
}

var inputSchemasCompiled = compileJSONSchemas()
