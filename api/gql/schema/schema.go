package schema

import (
	"github.com/graphql-go/graphql"
	"github.com/reformlab/reformer/api/rest/service/simulation"
	"github.com/reformlab/reformer/api/rest/service/stats"
	"github.com/reformlab/reformer/internal/models"
)

// New instantiates a fresh GraphQL schema for the read API.
func New() graphql.SchemaConfig {
	return graphql.SchemaConfig{
		Query: graphql.NewObject(
			graphql.ObjectConfig{
				Name:   "Query",
				Fields: fields(),
			},
		),
	}
}

var simulationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Simulation",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Simulation).ID, nil
			},
		},
		"biooilId": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Simulation).BiooilID, nil
			},
		},
		"status": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return string(p.Source.(models.Simulation).ConvergenceStatus), nil
			},
		},
		"massBalanceErrorPercent": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Simulation).MassBalanceErrorPercent, nil
			},
		},
		"energyBalanceErrorPercent": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Simulation).EnergyBalanceErrorPercent, nil
			},
		},
		"simulationDate": &graphql.Field{
			Type: graphql.DateTime,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Simulation).SimulationDate, nil
			},
		},
	},
})

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Stats",
	Fields: graphql.Fields{
		"total": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*stats.StatsResponse).Simulations.Total, nil
			},
		},
		"converged": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*stats.StatsResponse).Simulations.Converged, nil
			},
		},
		"failed": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*stats.StatsResponse).Simulations.Failed, nil
			},
		},
		"convergenceRate": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*stats.StatsResponse).Simulations.ConvergenceRate, nil
			},
		},
		"avgH2YieldKg": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*stats.StatsResponse).Simulations.AvgH2YieldKg, nil
			},
		},
	},
})

func fields() graphql.Fields {
	return graphql.Fields{
		"simulations": &graphql.Field{
			Type: graphql.NewList(simulationType),
			Args: graphql.FieldConfigArgument{
				"status": &graphql.ArgumentConfig{
					Type: graphql.String,
				},
				"biooilId": &graphql.ArgumentConfig{
					Type: graphql.Int,
				},
				"limit": &graphql.ArgumentConfig{
					Type:         graphql.Int,
					DefaultValue: 100,
				},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				req := &simulation.ListRequest{}
				if status, ok := p.Args["status"].(string); ok {
					req.Status = status
				}
				if biooil, ok := p.Args["biooilId"].(int); ok {
					req.BiooilID = int64(biooil)
				}
				if limit, ok := p.Args["limit"].(int); ok && limit > 0 {
					req.Limit = uint64(limit)
				}
				return simulation.Service(p.Context).List(req)
			},
		},
		"stats": &graphql.Field{
			Type: statsType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return stats.New(p.Context).Get()
			},
		},
	}
}
