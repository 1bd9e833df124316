// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package ocs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	QueryCounter = "ocs_queries_total"
)

// Labels
const (
	OutcomeLabel = "outcome"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QueryCounter,
				Help: "Counter for get_computers_V1 queries, labelled by their success/failure outcome.",
			},
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Queries *prometheus.CounterVec `name:"ocs_queries_total"`
}
