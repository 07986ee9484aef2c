// Package openapi embeds the HTTP API description served at /api/v1/openapi.{yaml,json}.
package openapi

import _ "embed"

// Spec is the OpenAPI 3 document
//
//go:embed openapi.yaml
var Spec []byte
