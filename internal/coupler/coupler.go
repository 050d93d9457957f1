// Package coupler mutates case status as a side effect of event lifecycle
// changes. Cases oscillate between active and pending depending on whether
// any scheduled event is outstanding; staff-driven statuses (urgent,
// resolved, closed) are authoritative and never overridden here.
package coupler

import (
	"context"

	"paceaid/pkg/types"

	"github.com/sirupsen/logrus"
)

type CaseStore interface {
	CaseStatus(ctx context.Context, caseID string) (types.CaseStatus, error)
	SetCaseStatus(ctx context.Context, caseID string, status types.CaseStatus) error
}

type EventStore interface {
	HasScheduledEvents(ctx context.Context, caseID string) (bool, error)
}

type Coupler struct {
	logger *logrus.Logger
	cases  CaseStore
	events EventStore
}

func New(logger *logrus.Logger, cases CaseStore, events EventStore) *Coupler {
	return &Coupler{
		logger: logger,
		cases:  cases,
		events: events,
	}
}

// EventCreated marks an active case pending: it is now waiting on the new
// event. Any other status is left alone. The returned error is advisory;
// callers report the event mutation as successful regardless.
func (c *Coupler) EventCreated(ctx context.Context, caseID string) (types.CaseStatus, bool, error) {

	status, err := c.cases.CaseStatus(ctx, caseID)
	if err != nil {
		c.logger.WithError(err).WithField("case_id", caseID).Warn("coupler: failed to read case status")
		return "", false, err
	}

	if status != types.CaseStatusActive {
		return status, false, nil
	}

	if err := c.cases.SetCaseStatus(ctx, caseID, types.CaseStatusPending); err != nil {
		c.logger.WithError(err).WithField("case_id", caseID).Warn("coupler: failed to mark case pending")
		return status, false, err
	}

	return types.CaseStatusPending, true, nil
}

// EventSettled runs after an event update or delete. When no scheduled
// event remains and the case is still pending, it reverts to active.
func (c *Coupler) EventSettled(ctx context.Context, caseID string) (types.CaseStatus, bool, error) {

	hasScheduled, err := c.events.HasScheduledEvents(ctx, caseID)
	if err != nil {
		c.logger.WithError(err).WithField("case_id", caseID).Warn("coupler: failed to check scheduled events")
		return "", false, err
	}

	if hasScheduled {
		return "", false, nil
	}

	status, err := c.cases.CaseStatus(ctx, caseID)
	if err != nil {
		c.logger.WithError(err).WithField("case_id", caseID).Warn("coupler: failed to read case status")
		return "", false, err
	}

	if status != types.CaseStatusPending {
		return status, false, nil
	}

	if err := c.cases.SetCaseStatus(ctx, caseID, types.CaseStatusActive); err != nil {
		c.logger.WithError(err).WithField("case_id", caseID).Warn("coupler: failed to revert case to active")
		return status, false, err
	}

	return types.CaseStatusActive, true, nil
}
