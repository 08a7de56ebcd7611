// Package metrics summarises recorded oscillator traces. Every metric is
// fed by sim.Recorder once per oscillator per frame and ignores samples
// holding the overshoot rest marker.
package metrics

import "github.com/san-kum/overshoot/internal/dynamo"

type Metric = dynamo.Metric
