// Package capture implements the visitor interaction capture agent. It
// attaches to an embedded 3D viewer, classifies raw viewer signals into
// interaction events and ships them to the ingestion API in batches.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/pkg/config"
)

// Pose is a camera position update from the viewer.
type Pose struct {
	Position analytics.Position
}

// TagClick is a click on an annotated point of interest.
type TagClick struct {
	TagID string
}

// SweepEnter is a navigation hop between sweep points.
type SweepEnter struct {
	From string
	To   string
}

// ZoomChange is a zoom level update from the viewer.
type ZoomChange struct {
	Level float64
}

// Viewer is the read side of an embedded 3D viewer. Implementations bridge
// a real viewer SDK; tests feed the channels directly.
type Viewer interface {
	Poses() <-chan Pose
	TagClicks() <-chan TagClick
	SweepEnters() <-chan SweepEnter
	Zooms() <-chan ZoomChange
	Close() error
}

// Probe reports whether the viewer has finished loading and returns it once
// it has.
type Probe func() (Viewer, bool)

// Attach polls the probe until the viewer is ready, giving up after the
// configured timeout. Viewer scripts load asynchronously so readiness can
// only be observed, not awaited.
func Attach(ctx context.Context, probe Probe) (Viewer, error) {
	deadline := time.Now().Add(config.ViewerAttachTimeout)
	ticker := time.NewTicker(config.ViewerPollInterval)
	defer ticker.Stop()

	for {
		if viewer, ready := probe(); ready {
			return viewer, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("viewer did not attach within %s", config.ViewerAttachTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
