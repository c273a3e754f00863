// Package core implements the shared insight analysis engine: feature
// extraction, normalization, clustering, risk scoring, anomaly detection and
// recommendation synthesis over repository activity snapshots.
package core
