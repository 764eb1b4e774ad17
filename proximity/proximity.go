// Package proximity computes the distance between a player and their
// current target from the location cache. Missing data means "not nearby,
// distance unknown" — disconnection is expected, not exceptional.
package proximity

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/wfunc/manhunt/apperr"
	"github.com/wfunc/manhunt/cache"
	"github.com/wfunc/manhunt/models"
	"github.com/wfunc/manhunt/persistence"
)

const earthRadiusMeters = 6371000

type Service struct {
	store           persistence.Store
	cache           cache.LocationCache
	thresholdMeters float64
	locationTTL     time.Duration
}

func NewService(store persistence.Store, locations cache.LocationCache, thresholdMeters float64, locationTTL time.Duration) *Service {
	if thresholdMeters <= 0 {
		thresholdMeters = 50
	}
	if locationTTL <= 0 {
		locationTTL = time.Hour
	}
	return &Service{
		store:           store,
		cache:           locations,
		thresholdMeters: thresholdMeters,
		locationTTL:     locationTTL,
	}
}

// RecordLocation writes the player's coordinate to the cache under the
// configured TTL. It never touches the entity store.
func (s *Service) RecordLocation(ctx context.Context, playerID uint, lat, lng float64) error {
	return s.cache.SetLocation(ctx, playerID, cache.Coordinate{Lat: lat, Lng: lng}, s.locationTTL)
}

// DistanceToTarget records the player's location and reports distance to
// their current target. No target or no cached target location yields
// {Nearby: false, Distance: nil}.
func (s *Service) DistanceToTarget(ctx context.Context, playerID uint, lat, lng float64) (*models.ProximityResult, error) {
	if err := s.RecordLocation(ctx, playerID, lat, lng); err != nil {
		return nil, err
	}

	player, err := s.store.GetPlayer(playerID)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, apperr.NotFound("Player not found")
		}
		return nil, err
	}
	if player.CurrentTargetID == nil {
		return &models.ProximityResult{Nearby: false}, nil
	}

	targetLoc, ok, err := s.cache.GetLocation(ctx, *player.CurrentTargetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.ProximityResult{Nearby: false, TargetID: *player.CurrentTargetID}, nil
	}

	distance := Haversine(lat, lng, targetLoc.Lat, targetLoc.Lng)
	rounded := int(math.Round(distance))
	return &models.ProximityResult{
		Nearby:   distance <= s.thresholdMeters,
		Distance: &rounded,
		TargetID: *player.CurrentTargetID,
	}, nil
}

// VerifyKillProximity is the advisory gate before a kill-confirmation UI is
// shown: both the hunter's and the target's locations come from the cache.
// It never authorizes the kill itself — the engine trusts the secret code,
// not distance.
func (s *Service) VerifyKillProximity(ctx context.Context, hunterID uint) (*models.ProximityResult, error) {
	hunter, err := s.store.GetPlayer(hunterID)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, apperr.NotFound("Player not found")
		}
		return nil, err
	}
	if hunter.CurrentTargetID == nil {
		return nil, apperr.InvalidState("You have no assigned target")
	}
	targetID := *hunter.CurrentTargetID

	hunterLoc, ok, err := s.cache.GetLocation(ctx, hunterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.ProximityResult{Nearby: false, TargetID: targetID}, nil
	}

	targetLoc, ok, err := s.cache.GetLocation(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.ProximityResult{Nearby: false, TargetID: targetID}, nil
	}

	distance := Haversine(hunterLoc.Lat, hunterLoc.Lng, targetLoc.Lat, targetLoc.Lng)
	rounded := int(math.Round(distance))
	return &models.ProximityResult{
		Nearby:   distance <= s.thresholdMeters,
		Distance: &rounded,
		TargetID: targetID,
	}, nil
}

// Haversine returns the great-circle distance in meters between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
