package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"org-sync-backend/pkg/models"
)

// notification is the envelope the database triggers put on the wire.
// Insert and update notifications carry the full row; the trigger
// omits it when the payload would blow past the NOTIFY size limit, in
// which case the event is dropped here and a refresh recovers.
type notification struct {
	Table     string          `json:"table"`
	Kind      string          `json:"kind"`
	OrgID     string          `json:"orgid"`
	ID        string          `json:"id"`
	RoleID    string          `json:"roleid"`
	ProfileID string          `json:"profileid"`
	Row       json.RawMessage `json:"row"`
}

// channelFor returns the NOTIFY channel carrying one org's changes.
func channelFor(orgID string) string {
	return "org_changes_" + orgID
}

// pgSubscription wraps a dedicated pq.Listener for one org. The
// listener reconnects on its own; anything missed while disconnected
// is simply lost, which the consumer handles by refreshing.
type pgSubscription struct {
	listener *pq.Listener
	events   chan Event
	done     chan struct{}
}

func (s *pgSubscription) Events() <-chan Event { return s.events }

func (s *pgSubscription) Close() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	s.listener.Close()
}

// Subscribe opens a LISTEN connection for the org's change channel
// and decodes notifications into typed events.
func (s *PostgresStore) Subscribe(orgID string) (Subscription, error) {
	listener := pq.NewListener(s.dsn, 5*time.Second, time.Minute, nil)
	if err := listener.Listen(channelFor(orgID)); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen for %s: %w", orgID, err)
	}

	sub := &pgSubscription{
		listener: listener,
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}
	go sub.run()
	return sub, nil
}

func (s *pgSubscription) run() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case n, ok := <-s.listener.Notify:
			if !ok {
				return
			}
			// nil notification means the connection was
			// re-established; events in between are gone.
			if n == nil {
				continue
			}
			ev, err := decodeNotification([]byte(n.Extra))
			if err != nil || ev == nil {
				continue
			}
			select {
			case s.events <- ev:
			default:
				// slow consumer; drop, refresh recovers
			}
		}
	}
}

// decodeNotification maps a trigger payload to a typed event. A nil
// event with nil error means the payload was understood but carries
// nothing applicable (e.g. a truncated row).
func decodeNotification(payload []byte) (Event, error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}

	var kind EventKind
	switch n.Kind {
	case "insert":
		kind = EventInsert
	case "update":
		kind = EventUpdate
	case "delete":
		kind = EventDelete
	default:
		return nil, fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	// Inserts and updates without a row cannot be applied.
	if kind != EventDelete && len(n.Row) == 0 {
		return nil, nil
	}

	switch n.Table {
	case "organizations":
		var row models.Organization
		if err := json.Unmarshal(n.Row, &row); err != nil {
			return nil, fmt.Errorf("failed to decode organization row: %w", err)
		}
		return OrganizationUpdated{Row: row}, nil
	case "profiles":
		ev := ProfileChanged{Org: n.OrgID, Kind: kind, ID: n.ID}
		if kind != EventDelete {
			if err := json.Unmarshal(n.Row, &ev.Row); err != nil {
				return nil, fmt.Errorf("failed to decode profile row: %w", err)
			}
		}
		return ev, nil
	case "roles":
		ev := RoleChanged{Org: n.OrgID, Kind: kind, ID: n.ID}
		if kind != EventDelete {
			if err := json.Unmarshal(n.Row, &ev.Row); err != nil {
				return nil, fmt.Errorf("failed to decode role row: %w", err)
			}
		}
		return ev, nil
	case "teams":
		ev := TeamChanged{Org: n.OrgID, Kind: kind, ID: n.ID}
		if kind != EventDelete {
			if err := json.Unmarshal(n.Row, &ev.Row); err != nil {
				return nil, fmt.Errorf("failed to decode team row: %w", err)
			}
		}
		return ev, nil
	case "assignments":
		ev := AssignmentChanged{Org: n.OrgID, Kind: kind, RoleID: n.RoleID, ProfileID: n.ProfileID}
		if kind != EventDelete {
			if err := json.Unmarshal(n.Row, &ev.Row); err != nil {
				return nil, fmt.Errorf("failed to decode assignment row: %w", err)
			}
		}
		return ev, nil
	case "processes":
		ev := ProcessChanged{Org: n.OrgID, Kind: kind, ID: n.ID}
		if kind != EventDelete {
			if err := json.Unmarshal(n.Row, &ev.Row); err != nil {
				return nil, fmt.Errorf("failed to decode process row: %w", err)
			}
		}
		return ev, nil
	case "steps":
		ev := StepChanged{Org: n.OrgID, Kind: kind, ID: n.ID}
		if kind != EventDelete {
			if err := json.Unmarshal(n.Row, &ev.Row); err != nil {
				return nil, fmt.Errorf("failed to decode step row: %w", err)
			}
		}
		return ev, nil
	case "changes":
		ev := ChangeChanged{Org: n.OrgID, Kind: kind, ID: n.ID}
		if kind != EventDelete {
			if err := json.Unmarshal(n.Row, &ev.Row); err != nil {
				return nil, fmt.Errorf("failed to decode change row: %w", err)
			}
		}
		return ev, nil
	default:
		// comments are fetched on demand, and unknown tables are
		// a schema drift signal worth ignoring here
		return nil, nil
	}
}
