package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lablink/internal/logging"
)

func TestLaboratoryService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newService := func(t *testing.T) *LaboratoryService {
		ids := &sequence{}
		return NewLaboratoryServiceWithLogger(newTestStore(t), ids.next, logging.Discard())
	}

	t.Run("create requires a name and leaves the list untouched", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)

		_, err := svc.CreateLaboratory(ctx, LaboratoryInput{Name: "   ", Location: "B1"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "name is required", vErr.FieldErrors["name"])

		labs, err := svc.ListLaboratories(ctx)
		require.NoError(t, err)
		assert.Empty(t, labs)
	})

	t.Run("create then get round trips", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)

		created, err := svc.CreateLaboratory(ctx, LaboratoryInput{Name: " Wet Lab ", Description: "Chemistry", Location: "B1"})
		require.NoError(t, err)
		assert.Equal(t, Laboratory{ID: "lab-1", Name: "Wet Lab", Description: "Chemistry", Location: "B1"}, created)

		fetched, err := svc.GetLaboratory(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)

		labs, err := svc.ListLaboratories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Laboratory{created}, labs)
	})

	t.Run("update merges provided fields only", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		created, err := svc.CreateLaboratory(ctx, LaboratoryInput{Name: "Wet Lab", Description: "Chemistry", Location: "B1"})
		require.NoError(t, err)

		updated, err := svc.UpdateLaboratory(ctx, created.ID, LaboratoryInput{Location: "B2"})
		require.NoError(t, err)
		assert.Equal(t, Laboratory{ID: created.ID, Name: "Wet Lab", Description: "Chemistry", Location: "B2"}, updated)

		_, err = svc.UpdateLaboratory(ctx, "lab-missing", LaboratoryInput{Name: "x"})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "Laboratory not found", err.Error())
	})

	t.Run("delete removes and reports missing ids", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		created, err := svc.CreateLaboratory(ctx, LaboratoryInput{Name: "Wet Lab"})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteLaboratory(ctx, created.ID))
		_, err = svc.GetLaboratory(ctx, created.ID)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, svc.DeleteLaboratory(ctx, created.ID), ErrNotFound)
	})
}

func TestResourceService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newService := func(t *testing.T) *ResourceService {
		ids := &sequence{}
		return NewResourceServiceWithLogger(newTestStore(t), ids.next, logging.Discard())
	}

	t.Run("create requires a name", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)

		_, err := svc.CreateResource(ctx, ResourceInput{Type: "microscope"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "name is required", err.Error())

		resources, err := svc.ListResources(ctx)
		require.NoError(t, err)
		assert.Empty(t, resources)
	})

	t.Run("laboratory reference is stored unchecked", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)

		created, err := svc.CreateResource(ctx, ResourceInput{Name: "Confocal", Type: "microscope", LaboratoryID: "lab-ghost"})
		require.NoError(t, err)
		assert.Equal(t, Resource{ID: "resource-1", Name: "Confocal", Type: "microscope", LaboratoryID: "lab-ghost"}, created)

		fetched, err := svc.GetResource(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)
	})

	t.Run("update keeps fields that are not provided", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		created, err := svc.CreateResource(ctx, ResourceInput{Name: "Confocal", Type: "microscope"})
		require.NoError(t, err)

		updated, err := svc.UpdateResource(ctx, created.ID, ResourceInput{Name: "Confocal 2", LaboratoryID: "lab-1"})
		require.NoError(t, err)
		assert.Equal(t, Resource{ID: created.ID, Name: "Confocal 2", Type: "microscope", LaboratoryID: "lab-1"}, updated)

		_, err = svc.UpdateResource(ctx, "resource-missing", ResourceInput{})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "Resource not found", err.Error())
	})

	t.Run("delete then get fails not found", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		created, err := svc.CreateResource(ctx, ResourceInput{Name: "Centrifuge"})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteResource(ctx, created.ID))
		_, err = svc.GetResource(ctx, created.ID)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, svc.DeleteResource(ctx, created.ID), ErrNotFound)
	})
}
