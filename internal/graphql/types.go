// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/libbyhq/libby/internal/core/author"
	"github.com/libbyhq/libby/internal/core/book"
	"github.com/libbyhq/libby/internal/core/review"
	"github.com/libbyhq/libby/internal/users/auth"
)

// # Object Types
//
// The types mirror the REST JSON shapes so both API surfaces expose the same
// vocabulary. Field resolvers cast p.Source to the domain entity; graphql-go
// falls back to struct-tag matching only for trivial cases, so every field
// is resolved explicitly.

func (s *Schema) authorType() *graphql.Object {
	if s.author != nil {
		return s.author
	}

	s.author = graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*author.Author).ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*author.Author).Name, nil
				},
			},
			"bio": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*author.Author).Bio, nil
				},
			},
			"imageUrl": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*author.Author).ImageURL, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*author.Author).CreatedAt, nil
				},
			},
		},
	})

	// Author.books closes the Author <-> Book cycle, so it is attached after
	// both objects exist.
	s.author.AddFieldConfig("books", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(s.bookType())),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			source := p.Source.(*author.Author)
			books, _, err := s.services.Books.ListBooks(p.Context, book.Filter{AuthorID: &source.ID}, maxNestedList, 0)
			return books, err
		},
	})

	return s.author
}

func (s *Schema) imageType() *graphql.Object {
	if s.image != nil {
		return s.image
	}

	s.image = graphql.NewObject(graphql.ObjectConfig{
		Name: "BookImage",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Image).ID, nil
				},
			},
			"url": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Image).URL, nil
				},
			},
			"caption": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Image).Caption, nil
				},
			},
			"position": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Image).Position, nil
				},
			},
		},
	})

	return s.image
}

func (s *Schema) bookType() *graphql.Object {
	if s.book != nil {
		return s.book
	}

	s.book = graphql.NewObject(graphql.ObjectConfig{
		Name: "Book",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).ID, nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).Title, nil
				},
			},
			"slug": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).Slug, nil
				},
			},
			"subtitle": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).Subtitle, nil
				},
			},
			"description": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).Description, nil
				},
			},
			"authorName": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).AuthorName, nil
				},
			},
			"isbn": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).ISBN, nil
				},
			},
			"pages": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).Pages, nil
				},
			},
			"publishedAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).PublishedAt, nil
				},
			},
			"coverUrl": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).CoverURL, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*book.Book).CreatedAt, nil
				},
			},
			"images": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(s.imageType())),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					source := p.Source.(*book.Book)
					// List reads don't hydrate the gallery; fetch on demand.
					if source.Images != nil {
						return source.Images, nil
					}
					return s.services.Books.ListImages(p.Context, source.ID)
				},
			},
		},
	})

	s.book.AddFieldConfig("author", &graphql.Field{
		Type: s.authorType(),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return s.services.Authors.GetAuthor(p.Context, p.Source.(*book.Book).AuthorID)
		},
	})

	s.book.AddFieldConfig("reviews", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(s.reviewType())),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			reviews, _, err := s.services.Reviews.ListByBook(p.Context, p.Source.(*book.Book).ID, maxNestedList, 0)
			return reviews, err
		},
	})

	return s.book
}

func (s *Schema) reviewType() *graphql.Object {
	if s.review != nil {
		return s.review
	}

	s.review = graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*review.Review).ID, nil
				},
			},
			"bookId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*review.Review).BookID, nil
				},
			},
			"userId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*review.Review).UserID, nil
				},
			},
			"username": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*review.Review).Username, nil
				},
			},
			"rating": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*review.Review).Rating, nil
				},
			},
			"body": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*review.Review).Body, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*review.Review).CreatedAt, nil
				},
			},
		},
	})

	return s.review
}

func (s *Schema) userType() *graphql.Object {
	if s.user != nil {
		return s.user
	}

	s.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*auth.User).ID, nil
				},
			},
			"username": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*auth.User).Username, nil
				},
			},
			"displayName": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*auth.User).DisplayName, nil
				},
			},
			"role": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(p.Source.(*auth.User).Role), nil
				},
			},
		},
	})

	return s.user
}

// # Pagination Wrappers
//
// The page objects carry the same totalCount the REST endpoints expose in
// their pagination metadata.

type bookPage struct {
	Items []*book.Book
	Total int
}

type authorPage struct {
	Items []*author.Author
	Total int
}

type reviewPage struct {
	Items []*review.Review
	Total int
}

func (s *Schema) bookPageType() *graphql.Object {
	if s.bookPage != nil {
		return s.bookPage
	}

	s.bookPage = graphql.NewObject(graphql.ObjectConfig{
		Name: "BookPage",
		Fields: graphql.Fields{
			"items": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(s.bookType())),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*bookPage).Items, nil
				},
			},
			"totalCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*bookPage).Total, nil
				},
			},
		},
	})

	return s.bookPage
}

func (s *Schema) authorPageType() *graphql.Object {
	if s.authorPage != nil {
		return s.authorPage
	}

	s.authorPage = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthorPage",
		Fields: graphql.Fields{
			"items": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(s.authorType())),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*authorPage).Items, nil
				},
			},
			"totalCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*authorPage).Total, nil
				},
			},
		},
	})

	return s.authorPage
}

func (s *Schema) reviewPageType() *graphql.Object {
	if s.reviewPage != nil {
		return s.reviewPage
	}

	s.reviewPage = graphql.NewObject(graphql.ObjectConfig{
		Name: "ReviewPage",
		Fields: graphql.Fields{
			"items": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(s.reviewType())),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*reviewPage).Items, nil
				},
			},
			"totalCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*reviewPage).Total, nil
				},
			},
		},
	})

	return s.reviewPage
}

func (s *Schema) authPayloadType() *graphql.Object {
	if s.authPayload != nil {
		return s.authPayload
	}

	s.authPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*auth.LoginSession).AccessToken, nil
				},
			},
			"refreshToken": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*auth.LoginSession).RefreshToken, nil
				},
			},
			"refreshExpiresAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.DateTime),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*auth.LoginSession).RefreshTokenExpiresAt, nil
				},
			},
		},
	})

	s.authPayload.AddFieldConfig("user", &graphql.Field{
		Type: graphql.NewNonNull(s.userType()),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(*auth.LoginSession).User, nil
		},
	})

	return s.authPayload
}

func (s *Schema) tokenClaimsType() *graphql.Object {
	if s.tokenClaims != nil {
		return s.tokenClaims
	}

	s.tokenClaims = graphql.NewObject(graphql.ObjectConfig{
		Name: "TokenClaims",
		Fields: graphql.Fields{
			"userId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*verifiedClaims).UserID, nil
				},
			},
			"username": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*verifiedClaims).Username, nil
				},
			},
			"role": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*verifiedClaims).Role, nil
				},
			},
		},
	})

	return s.tokenClaims
}
