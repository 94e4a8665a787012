// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package graphql

import (
	"net/http"

	"github.com/graphql-go/graphql"
	gqlhandler "github.com/graphql-go/handler"
)

// NewHandler wraps the executable schema in an HTTP handler serving POST
// queries and an interactive GraphiQL IDE on GET.
//
// Authentication is NOT handled here: the handler expects to be mounted
// behind the shared Authenticate middleware, which has already decoded the
// 'Authorization: JWT <token>' header into the request context.
func NewHandler(schema graphql.Schema) http.Handler {
	return gqlhandler.New(&gqlhandler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: true,
	})
}
