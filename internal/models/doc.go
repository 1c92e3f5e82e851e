// Package models defines the core data types persisted and passed between
// Sentinel's ingestion stages: Source, Article, Event, EventGroup, and
// SearchQueryAudit. These are plain data structures; validation and
// persistence live in internal/store, and behavior (scoring, clustering,
// resolution) lives in the stage packages that consume them.
package models
