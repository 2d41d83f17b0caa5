package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// ImportJob is the Pushgateway job name of a seed run.
const ImportJob = "radiodir_import"

// Push replaces the metrics of job on the Pushgateway at url with everything
// gathered from g. Short-lived processes use it since nothing scrapes them.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
