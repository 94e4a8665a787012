// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

/*
Package graphql exposes the catalogue and review domain over a GraphQL
endpoint, mirroring the REST API's semantics.

# Architecture

  - Schema: Programmatic type and field definitions built on graphql-go.
  - Resolvers: Thin adapters delegating to the same domain services the
    REST handlers use, so both surfaces share one set of business rules.
  - Auth: Claims are injected into the request context by the shared
    Authenticate middleware; mutations check them per field.

# Conventions

Clients authenticate with 'Authorization: JWT <token>' (Bearer is accepted
too). Errors surface as GraphQL errors carrying the domain message.
*/
package graphql

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/libbyhq/libby/internal/core/author"
	"github.com/libbyhq/libby/internal/core/book"
	"github.com/libbyhq/libby/internal/core/review"
	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/ctxutil"
	"github.com/libbyhq/libby/internal/platform/middleware"
	"github.com/libbyhq/libby/internal/platform/sec"
	"github.com/libbyhq/libby/internal/users/auth"
	"github.com/libbyhq/libby/pkg/pagination"
)

// maxNestedList caps list fields resolved inside another object (an
// author's books, a book's reviews) so a single query cannot fan out
// unbounded.
const maxNestedList = 50

// Services bundles the domain dependencies the resolvers delegate to.
type Services struct {
	Authors  *author.Service
	Books    *book.Service
	Reviews  *review.Service
	Auth     *auth.Service
	Verifier middleware.TokenVerifier
}

// Schema owns the lazily-built GraphQL object graph. Object types are
// memoized on the struct because Book, Author, and Review reference each
// other cyclically.
type Schema struct {
	services Services

	author      *graphql.Object
	book        *graphql.Object
	image       *graphql.Object
	review      *graphql.Object
	user        *graphql.Object
	authPayload *graphql.Object
	tokenClaims *graphql.Object
	bookPage    *graphql.Object
	authorPage  *graphql.Object
	reviewPage  *graphql.Object
}

// verifiedClaims is the resolver-facing shape of decoded token claims.
type verifiedClaims struct {
	UserID   string
	Username string
	Role     string
}

// NewSchema assembles the executable schema from the domain services.
func NewSchema(services Services) (graphql.Schema, error) {
	builder := &Schema{services: services}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    builder.queryType(),
		Mutation: builder.mutationType(),
	})
}

// # Resolver Helpers

// requireClaims extracts the authenticated user or fails the field.
func requireClaims(p graphql.ResolveParams) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(p.Context)
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// requireRole enforces a minimum role on a mutation field.
func requireRole(p graphql.ResolveParams, role sec.UserRole) (*sec.AuthClaims, error) {
	claims, err := requireClaims(p)
	if err != nil {
		return nil, err
	}
	if !sec.UserRole(claims.Role).AtLeast(role) {
		return nil, apperr.Forbidden("Insufficient permissions")
	}
	return claims, nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	if value, ok := p.Args[name].(string); ok {
		return value
	}
	return ""
}

func optionalStringArg(p graphql.ResolveParams, name string) *string {
	if value, ok := p.Args[name].(string); ok {
		return &value
	}
	return nil
}

func intArg(p graphql.ResolveParams, name string, fallback int) int {
	if value, ok := p.Args[name].(int); ok {
		return value
	}
	return fallback
}

func optionalIntArg(p graphql.ResolveParams, name string) *int {
	if value, ok := p.Args[name].(int); ok {
		return &value
	}
	return nil
}

func optionalTimeArg(p graphql.ResolveParams, name string) *time.Time {
	if value, ok := p.Args[name].(time.Time); ok {
		return &value
	}
	return nil
}

// pageArgs maps the page/limit arguments onto the shared pagination bounds.
func pageArgs(p graphql.ResolveParams) pagination.Params {
	return pagination.FromValues(intArg(p, "page", 1), intArg(p, "limit", 20))
}

// # Query Root

func (s *Schema) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"books": &graphql.Field{
				Type: graphql.NewNonNull(s.bookPageType()),
				Args: graphql.FieldConfigArgument{
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"authorId": &graphql.ArgumentConfig{Type: graphql.Int},
					"year":     &graphql.ArgumentConfig{Type: graphql.Int},
					"sort":     &graphql.ArgumentConfig{Type: graphql.String},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					params := pageArgs(p)
					filter := book.Filter{
						Query:    stringArg(p, "search"),
						AuthorID: optionalIntArg(p, "authorId"),
						Year:     optionalIntArg(p, "year"),
						Sort:     stringArg(p, "sort"),
					}
					books, total, err := s.services.Books.ListBooks(p.Context, filter, params.Limit, params.Offset())
					if err != nil {
						return nil, err
					}
					return &bookPage{Items: books, Total: total}, nil
				},
			},
			"book": &graphql.Field{
				Type: s.bookType(),
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.ID},
					"slug": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					identifier := stringArg(p, "id")
					if identifier == "" {
						identifier = stringArg(p, "slug")
					}
					if identifier == "" {
						return nil, apperr.ValidationError("Either id or slug is required")
					}
					return s.services.Books.GetBook(p.Context, identifier)
				},
			},
			"authors": &graphql.Field{
				Type: graphql.NewNonNull(s.authorPageType()),
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.String},
					"page":   &graphql.ArgumentConfig{Type: graphql.Int},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					params := pageArgs(p)
					authors, total, err := s.services.Authors.ListAuthors(p.Context, author.Filter{
						Query: stringArg(p, "search"),
					}, params.Limit, params.Offset())
					if err != nil {
						return nil, err
					}
					return &authorPage{Items: authors, Total: total}, nil
				},
			},
			"author": &graphql.Field{
				Type: s.authorType(),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.services.Authors.GetAuthor(p.Context, intArg(p, "id", 0))
				},
			},
			"reviews": &graphql.Field{
				Type: graphql.NewNonNull(s.reviewPageType()),
				Args: graphql.FieldConfigArgument{
					"bookId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"page":   &graphql.ArgumentConfig{Type: graphql.Int},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					params := pageArgs(p)
					reviews, total, err := s.services.Reviews.ListByBook(p.Context, stringArg(p, "bookId"), params.Limit, params.Offset())
					if err != nil {
						return nil, err
					}
					return &reviewPage{Items: reviews, Total: total}, nil
				},
			},
			"me": &graphql.Field{
				Type: s.tokenClaimsType(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireClaims(p)
					if err != nil {
						return nil, err
					}
					return &verifiedClaims{
						UserID:   claims.UserID,
						Username: claims.Username,
						Role:     claims.Role,
					}, nil
				},
			},
		},
	})
}

// # Mutation Root

func (s *Schema) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createBook": &graphql.Field{
				Type: graphql.NewNonNull(s.bookType()),
				Args: graphql.FieldConfigArgument{
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"authorName":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"subtitle":    &graphql.ArgumentConfig{Type: graphql.String},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"isbn":        &graphql.ArgumentConfig{Type: graphql.String},
					"pages":       &graphql.ArgumentConfig{Type: graphql.Int},
					"publishedAt": &graphql.ArgumentConfig{Type: graphql.DateTime},
					"coverUrl":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := requireRole(p, sec.RoleLibrarian); err != nil {
						return nil, err
					}

					record := &book.Book{
						Title:       stringArg(p, "title"),
						AuthorName:  stringArg(p, "authorName"),
						Subtitle:    optionalStringArg(p, "subtitle"),
						Description: stringArg(p, "description"),
						ISBN:        optionalStringArg(p, "isbn"),
						Pages:       optionalIntArg(p, "pages"),
						PublishedAt: optionalTimeArg(p, "publishedAt"),
						CoverURL:    stringArg(p, "coverUrl"),
					}
					if err := s.services.Books.CreateBook(p.Context, record); err != nil {
						return nil, err
					}
					return record, nil
				},
			},
			"updateBook": &graphql.Field{
				Type: graphql.NewNonNull(s.bookType()),
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":       &graphql.ArgumentConfig{Type: graphql.String},
					"authorName":  &graphql.ArgumentConfig{Type: graphql.String},
					"subtitle":    &graphql.ArgumentConfig{Type: graphql.String},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"isbn":        &graphql.ArgumentConfig{Type: graphql.String},
					"pages":       &graphql.ArgumentConfig{Type: graphql.Int},
					"publishedAt": &graphql.ArgumentConfig{Type: graphql.DateTime},
					"coverUrl":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := requireRole(p, sec.RoleLibrarian); err != nil {
						return nil, err
					}

					record := &book.Book{
						ID:          stringArg(p, "id"),
						Title:       stringArg(p, "title"),
						AuthorName:  stringArg(p, "authorName"),
						Subtitle:    optionalStringArg(p, "subtitle"),
						Description: stringArg(p, "description"),
						ISBN:        optionalStringArg(p, "isbn"),
						Pages:       optionalIntArg(p, "pages"),
						PublishedAt: optionalTimeArg(p, "publishedAt"),
						CoverURL:    stringArg(p, "coverUrl"),
					}
					if err := s.services.Books.UpdateBook(p.Context, record); err != nil {
						return nil, err
					}
					// Re-read so untouched fields come back populated.
					return s.services.Books.GetBook(p.Context, record.ID)
				},
			},
			"deleteBook": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := requireRole(p, sec.RoleAdmin); err != nil {
						return nil, err
					}
					if err := s.services.Books.DeleteBook(p.Context, stringArg(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"createReview": &graphql.Field{
				Type: graphql.NewNonNull(s.reviewType()),
				Args: graphql.FieldConfigArgument{
					"bookId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"rating": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"body":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireClaims(p)
					if err != nil {
						return nil, err
					}

					record := &review.Review{
						BookID:   stringArg(p, "bookId"),
						UserID:   claims.UserID,
						Username: claims.Username,
						Rating:   intArg(p, "rating", 0),
						Body:     stringArg(p, "body"),
					}
					if err := s.services.Reviews.CreateReview(p.Context, record); err != nil {
						return nil, err
					}
					return record, nil
				},
			},
			"updateReview": &graphql.Field{
				Type: graphql.NewNonNull(s.reviewType()),
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"rating": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"body":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireClaims(p)
					if err != nil {
						return nil, err
					}
					return s.services.Reviews.UpdateReview(p.Context, stringArg(p, "id"), claims.UserID, intArg(p, "rating", 0), stringArg(p, "body"))
				},
			},
			"deleteReview": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireClaims(p)
					if err != nil {
						return nil, err
					}
					isModerator := sec.UserRole(claims.Role).AtLeast(sec.RoleModerator)
					if err := s.services.Reviews.DeleteReview(p.Context, stringArg(p, "id"), claims.UserID, isModerator); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"tokenAuth": &graphql.Field{
				Type: graphql.NewNonNull(s.authPayloadType()),
				Args: graphql.FieldConfigArgument{
					"login":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.services.Auth.Login(p.Context, auth.LoginInput{
						Login:    stringArg(p, "login"),
						Password: stringArg(p, "password"),
					})
				},
			},
			"verifyToken": &graphql.Field{
				Type: graphql.NewNonNull(s.tokenClaimsType()),
				Args: graphql.FieldConfigArgument{
					"token": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := s.services.Verifier.VerifyToken(stringArg(p, "token"))
					if err != nil {
						return nil, apperr.Unauthorized("Invalid or expired token")
					}
					return &verifiedClaims{
						UserID:   claims.UserID,
						Username: claims.Username,
						Role:     claims.Role,
					}, nil
				},
			},
			"refreshToken": &graphql.Field{
				Type: graphql.NewNonNull(s.authPayloadType()),
				Args: graphql.FieldConfigArgument{
					"refreshToken": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.services.Auth.RefreshSession(p.Context, stringArg(p, "refreshToken"), "", "")
				},
			},
		},
	})
}
