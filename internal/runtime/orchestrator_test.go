package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenInventory struct{}

func (brokenInventory) Load(ctx context.Context) ([]domain.Entity, error) {
	return nil, errors.New("unexpected end of JSON input")
}

func testInventory() StaticInventory {
	return StaticInventory{
		{Name: "orphan", Raw: map[string]any{"name": "orphan"}},
		{Name: "det1", DeviceClass: "pcdsdevices.detector.Detector", Raw: map[string]any{"name": "det1"}},
		{Name: "at1k4", DeviceClass: "pcdsdevices.attenuator.AT1K4", Raw: map[string]any{"name": "at1k4"}},
	}
}

func TestOrchestrator_Run(t *testing.T) {
	wiki, _ := seededRoot(t)
	set := loadLayout(t)

	var seen []string
	o := NewOrchestrator(wiki,
		Target{Space: testSpace, RootTitle: "Root"},
		testInventory(),
		set,
		NewContextBuilder(nil),
		NewSynchronizer(wiki, testSpace),
		WithEntityHook(func(id, variant string) { seen = append(seen, id+":"+variant) }),
	)

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Entities)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{
		"det1:" + hierarchy.VariantPerDevice,
		"at1k4:" + hierarchy.VariantMatchingNameAndClass,
	}, seen)
	require.Len(t, report.Results, 5)
	assert.False(t, report.Failed())
	assert.Equal(t, 6, report.Counts()[domain.OutcomeCreated])

	assert.Len(t, report.State.ItemState("det1"), 3)
	assert.Len(t, report.State.ItemState("at1k4"), 2)
	assert.Equal(t, map[string]any{"name": "det1"}, report.State.Items["det1"])

	require.Len(t, report.ViewResults, 1)
	view, ok := wiki.Page(report.ViewResults[0].PageID)
	require.True(t, ok)
	assert.Equal(t, "All Devices", view.Title)
	assert.Equal(t, report.Root.ID, view.ParentID)
	assert.Equal(t, "<li>at1k4</li>\n<li>det1</li>\n", view.Body)

	_, ok = report.ViewState.Lookup("all_devices.template", "all_devices.template")
	assert.True(t, ok)
}

func TestOrchestrator_RerunWritesNothing(t *testing.T) {
	wiki, _ := seededRoot(t)
	set := loadLayout(t)
	newRun := func() *Orchestrator {
		return NewOrchestrator(wiki, Target{Space: testSpace, RootTitle: "Root"}, testInventory(), set,
			NewContextBuilder(nil), NewSynchronizer(wiki, testSpace))
	}

	_, err := newRun().Run(context.Background())
	require.NoError(t, err)
	writes := wiki.Writes()

	report, err := newRun().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, writes, wiki.Writes())
	assert.Zero(t, report.Counts()[domain.OutcomeCreated])
	assert.Zero(t, report.Counts()[domain.OutcomeUpdated])
}

func TestOrchestrator_MissingRoot(t *testing.T) {
	wiki, _ := seededRoot(t)
	o := NewOrchestrator(wiki, Target{Space: testSpace, RootTitle: "Elsewhere"}, testInventory(), loadLayout(t),
		NewContextBuilder(nil), NewSynchronizer(wiki, testSpace))

	report, err := o.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrRootPageNotFound)
	assert.Nil(t, report)
	assert.Zero(t, wiki.Writes())
}

func TestOrchestrator_InventoryError(t *testing.T) {
	wiki, _ := seededRoot(t)
	o := NewOrchestrator(wiki, Target{Space: testSpace, RootTitle: "Root"}, brokenInventory{}, loadLayout(t),
		NewContextBuilder(nil), NewSynchronizer(wiki, testSpace))

	_, err := o.Run(context.Background())
	assert.ErrorContains(t, err, "failed to load inventory")
}

func TestOrchestrator_Limit(t *testing.T) {
	wiki, _ := seededRoot(t)
	o := NewOrchestrator(wiki, Target{Space: testSpace, RootTitle: "Root", Limit: 1}, testInventory(), loadLayout(t),
		NewContextBuilder(nil), NewSynchronizer(wiki, testSpace))

	report, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Entities)
	assert.NotContains(t, report.State.Pages, "at1k4")
	assert.Len(t, report.ViewResults, 1, "Views still render in test mode")
}

func TestOrchestrator_Cancelled(t *testing.T) {
	wiki, _ := seededRoot(t)
	o := NewOrchestrator(wiki, Target{Space: testSpace, RootTitle: "Root"}, testInventory(), loadLayout(t),
		NewContextBuilder(nil), NewSynchronizer(wiki, testSpace))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Entities)
	assert.Zero(t, wiki.Writes())
}
