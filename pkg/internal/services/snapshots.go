package services

import (
	"github.com/poynterhq/poynter/pkg/internal/database"
	"github.com/poynterhq/poynter/pkg/internal/models"
)

// persistSnapshot is the seam the toggle operations write through;
// swapped in tests.
var persistSnapshot = SnapshotSpace

// SnapshotSpace persists an archival copy of the given tally with its
// computed averages. Called when a space or a ticket is closed, always
// before the matching broadcast.
func SnapshotSpace(space models.Space, sheet TallySheet) (models.Snapshot, error) {
	snapshot := models.Snapshot{
		SpaceID:  space.ID,
		Document: sheet.WithAverages(),
	}
	if err := database.C.Create(&snapshot).Error; err != nil {
		return snapshot, err
	}
	return snapshot, nil
}
