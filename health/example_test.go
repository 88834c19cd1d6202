package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/flowgate/health"
)

func ExampleOverall() {
	agg := health.NewAggregator(0)
	agg.Register(health.NewCheckerFunc("credentials", func(context.Context) health.Result {
		return health.Degraded("no API tokens configured")
	}))

	results := agg.CheckAll(context.Background())
	fmt.Println(health.Overall(results))
	// Output: degraded
}
