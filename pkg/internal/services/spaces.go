package services

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	localCache "github.com/poynterhq/poynter/pkg/internal/cache"
	"github.com/poynterhq/poynter/pkg/internal/database"
	"github.com/poynterhq/poynter/pkg/internal/models"
	"github.com/samber/lo"
)

func spaceCacheKey(slug string) string {
	return fmt.Sprintf("space-board#%s", slug)
}

// GetSpaceBySlug loads a space with its members and project. Lookups
// are cached briefly since every fragment render starts here; any
// mutation to the space must go through InvalidateSpaceCache.
func GetSpaceBySlug(slug string) (models.Space, error) {
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	if val, err := marshal.Get(ctx, spaceCacheKey(slug), new(models.Space)); err == nil {
		return *(val.(*models.Space)), nil
	}

	var space models.Space
	if err := database.C.
		Where("slug = ?", slug).
		Preload("Project").
		Preload("Members").
		First(&space).Error; err != nil {
		return space, err
	}

	_ = marshal.Set(
		ctx,
		spaceCacheKey(slug),
		space,
		store.WithExpiration(5*time.Minute),
		store.WithTags([]string{"space-board", fmt.Sprintf("space#%d", space.ID)}),
	)

	return space, nil
}

func InvalidateSpaceCache(slug string) {
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	_ = marshal.Delete(context.Background(), spaceCacheKey(slug))
}

func ListOpenSpaces() ([]models.Space, error) {
	var spaces []models.Space
	if err := database.C.
		Where("is_open = ?", true).
		Preload("Project").
		Find(&spaces).Error; err != nil {
		return spaces, err
	}
	return spaces, nil
}

func ListProjects() ([]models.Project, error) {
	var projects []models.Project
	if err := database.C.Find(&projects).Error; err != nil {
		return projects, err
	}
	return projects, nil
}

func IsSpaceMember(space models.Space, username string) bool {
	return lo.ContainsBy(space.Members, func(item models.SpaceMember) bool {
		return item.Username == username
	})
}

var updateSpaceOpen = func(space models.Space) error {
	return database.C.Model(&models.Space{}).
		Where("id = ?", space.ID).
		Update("is_open", space.IsOpen).Error
}

// ToggleSpace opens or closes a space for voting. Closing auto-saves a
// snapshot of the current vote state before any broadcast goes out, so
// viewers and the archival record stay consistent.
func ToggleSpace(space models.Space, tallies *TallyStore) (models.Space, error) {
	space.IsOpen = !space.IsOpen
	if err := updateSpaceOpen(space); err != nil {
		return space, err
	}

	if !space.IsOpen {
		if _, err := persistSnapshot(space, tallies.ReadVotes(space.Slug)); err != nil {
			return space, err
		}
	}

	InvalidateSpaceCache(space.Slug)
	return space, nil
}

// ToggleMembership joins the user to the space, or removes them if
// they already joined. Returns whether the user is a member afterward.
func ToggleMembership(space models.Space, username string) (bool, error) {
	var member models.SpaceMember
	err := database.C.
		Where("space_id = ? AND username = ?", space.ID, username).
		First(&member).Error
	if err == nil {
		if err := database.C.Delete(&member).Error; err != nil {
			return true, err
		}
		InvalidateSpaceCache(space.Slug)
		return false, nil
	}

	member = models.SpaceMember{
		SpaceID:  space.ID,
		Username: username,
	}
	if err := database.C.Create(&member).Error; err != nil {
		return false, err
	}

	InvalidateSpaceCache(space.Slug)
	return true, nil
}

// BootMembers removes the listed usernames from a space. Unknown
// usernames are skipped silently.
func BootMembers(space models.Space, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}

	if err := database.C.
		Where("space_id = ? AND username IN ?", space.ID, usernames).
		Delete(&models.SpaceMember{}).Error; err != nil {
		return err
	}

	InvalidateSpaceCache(space.Slug)
	return nil
}
