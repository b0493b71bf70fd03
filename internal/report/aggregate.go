package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/foxseedlab/shussekin/internal/classroom"
	"github.com/foxseedlab/shussekin/internal/identity"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// aggregate accumulates one participant's appearances across a room's
// sessions. Timestamps stay as raw epoch seconds until finalization.
type aggregate struct {
	participantID    string
	profile          identity.Profile
	roomName         string
	thirdPartyRoomID string
	joined           int64
	left             int64
	duration         int64
	attention        int64
}

// Collector reconciles one room's attendance against the identity
// directory. It keeps no state across rooms.
type Collector struct {
	client         classroom.Client
	directory      identity.Directory
	policy         InclusionPolicy
	loc            *time.Location
	sessionWorkers int
}

func NewCollector(client classroom.Client, directory identity.Directory, policy InclusionPolicy, loc *time.Location, sessionWorkers int) *Collector {
	if sessionWorkers <= 0 {
		sessionWorkers = 1
	}
	return &Collector{
		client:         client,
		directory:      directory,
		policy:         policy,
		loc:            loc,
		sessionWorkers: sessionWorkers,
	}
}

type sessionData struct {
	session  classroom.Session
	records  []classroom.AttendanceRecord
	profiles map[string]identity.Profile
	err      error
}

// CollectRoomRecords produces the finalized rows for one room. Sessions are
// fetched concurrently; merging happens on this goroutine only, so the
// per-participant fold is serialized. Any session failing fails the room.
func (c *Collector) CollectRoomRecords(ctx context.Context, sessions []classroom.Session, sessionKey string) ([]Row, error) {
	rows := []Row{}
	if len(sessions) == 0 {
		return rows, nil
	}

	results := make(chan sessionData, len(sessions))
	jobs := make(chan classroom.Session)
	var wg sync.WaitGroup
	workers := c.sessionWorkers
	if workers > len(sessions) {
		workers = len(sessions)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for session := range jobs {
				results <- c.fetchSessionData(ctx, session, sessionKey)
			}
		}()
	}
	go func() {
		for _, session := range sessions {
			jobs <- session
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	aggregates := make(map[string]*aggregate)
	var firstErr error
	for data := range results {
		if data.err != nil {
			if firstErr == nil {
				firstErr = data.err
			}
			continue
		}
		c.mergeSession(aggregates, data)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	for _, agg := range aggregates {
		rows = append(rows, c.finalize(agg))
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ParticipantID < rows[j].ParticipantID
	})
	return rows, nil
}

func (c *Collector) fetchSessionData(ctx context.Context, session classroom.Session, sessionKey string) sessionData {
	data := sessionData{session: session}
	slog.Info("collecting participants data", "room_id", session.RoomID, "session_id", session.ID)

	records, err := c.client.GetSessionAttendance(ctx, session.ID)
	if err != nil {
		data.err = fmt.Errorf("failed to fetch attendance for session %s: %w", session.ID, err)
		return data
	}
	filtered := records[:0:0]
	for _, rec := range records {
		if rec.ParticipantID == "" {
			continue
		}
		filtered = append(filtered, rec)
	}
	if len(filtered) == 0 {
		slog.Info("no identifiable participants in session", "room_id", session.RoomID, "session_id", session.ID)
		return data
	}
	data.records = filtered

	ids := dedupeParticipantIDs(filtered)
	slog.Info("resolving registration profiles", "room_id", session.RoomID, "session_id", session.ID, "participants", len(ids))
	profiles, err := c.directory.GetProfiles(ctx, sessionKey, ids)
	if err != nil {
		data.err = fmt.Errorf("failed to resolve profiles for session %s: %w", session.ID, err)
		return data
	}
	data.profiles = profiles
	return data
}

// dedupeParticipantIDs collapses repeated ids so the directory sees each id
// once per session, preserving first-appearance order.
func dedupeParticipantIDs(records []classroom.AttendanceRecord) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ParticipantID]; ok {
			continue
		}
		seen[rec.ParticipantID] = struct{}{}
		ids = append(ids, rec.ParticipantID)
	}
	return ids
}

func (c *Collector) mergeSession(aggregates map[string]*aggregate, data sessionData) {
	for _, rec := range data.records {
		profile, ok := data.profiles[rec.ParticipantID]
		if !ok {
			continue
		}
		if !c.policy(profile) {
			continue
		}

		joined := rec.Joined.Int64()
		left := rec.Left.Int64()
		// Upstream does not guarantee left >= joined; negative durations
		// pass through unclamped.
		duration := left - joined
		attention := rec.Attention.Int64()

		agg, ok := aggregates[rec.ParticipantID]
		if !ok {
			aggregates[rec.ParticipantID] = &aggregate{
				participantID:    rec.ParticipantID,
				profile:          profile,
				roomName:         data.session.RoomName,
				thirdPartyRoomID: data.session.ThirdPartyRoomID,
				joined:           joined,
				left:             left,
				duration:         duration,
				attention:        attention,
			}
			continue
		}
		agg.duration += duration
		agg.attention += attention
		if joined < agg.joined {
			agg.joined = joined
		}
		if left > agg.left {
			agg.left = left
		}
	}
}

func (c *Collector) finalize(agg *aggregate) Row {
	return Row{
		RoomName:         agg.roomName,
		ThirdPartyRoomID: agg.thirdPartyRoomID,
		ParticipantID:    agg.participantID,
		FirstName:        agg.profile.FirstName,
		LastName:         agg.profile.LastName,
		Email:            agg.profile.Email,
		Title:            agg.profile.Title,
		Company:          agg.profile.Company,
		Country:          agg.profile.Country,
		City:             agg.profile.City,
		State:            agg.profile.State,
		PostalCode:       agg.profile.PostalCode,
		Phone:            agg.profile.Phone,
		JobRole:          agg.profile.JobRole,
		Joined:           formatEpoch(agg.joined, c.loc),
		Left:             formatEpoch(agg.left, c.loc),
		Duration:         agg.duration,
		Attention:        agg.attention,
	}
}

func formatEpoch(epochSeconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(epochSeconds, 0).In(loc).Format(displayTimeLayout)
}
