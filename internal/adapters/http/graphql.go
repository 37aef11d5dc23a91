package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Report",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"user_id":     &graphql.Field{Type: graphql.String},
			"lat":         &graphql.Field{Type: graphql.Float},
			"lng":         &graphql.Field{Type: graphql.Float},
			"description": &graphql.Field{Type: graphql.String},
			"area_label":  &graphql.Field{Type: graphql.String},
			"distance":    &graphql.Field{Type: graphql.Float},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	placeField := func(get func(domain.SearchResult) string) *graphql.Field {
		return &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				r, ok := p.Source.(domain.SearchResult)
				if !ok {
					return nil, nil
				}
				return get(r), nil
			},
		}
	}
	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"display_name": placeField(func(r domain.SearchResult) string { return r.DisplayName }),
			"lat":          placeField(func(r domain.SearchResult) string { return r.Lat }),
			"lon":          placeField(func(r domain.SearchResult) string { return r.Lon }),
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"reports": &graphql.Field{
				Type:        graphql.NewList(reportType),
				Description: "List reports, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					reports, _, err := deps.Reports.List(p.Context, p.Args["limit"].(int), p.Args["offset"].(int))
					return reports, err
				},
			},
			"reportsNear": &graphql.Field{
				Type:        graphql.NewList(reportType),
				Description: "Reports within a radius of a point, nearest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center := domain.Coordinate{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					return deps.Reports.ListNear(p.Context, center, p.Args["radius"].(float64), p.Args["limit"].(int))
				},
			},
			"searchPlaces": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Free-text place search",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Places.Search(p.Context, p.Args["query"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"submitReport": &graphql.Field{
				Type:        reportType,
				Description: "Store one report",
				Args: graphql.FieldConfigArgument{
					"userId":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					at := domain.Coordinate{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					report, err := deps.Reports.Create(p.Context, p.Args["userId"].(string), at, p.Args["description"].(string))
					switch {
					case errors.Is(err, domain.ErrMissingFields):
						return nil, errors.New(domain.MsgMissingFields)
					case err != nil:
						LoggerFromCtx(p.Context).Error("graphql submit failed", "error", err)
						return nil, errors.New(domain.MsgSubmitFailed)
					}
					return report, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		c.Set("Cache-Control", "private, max-age=0")
		return c.JSON(result)
	}
}
