package program

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// DomainChangeLog separates change-log digests from any other hashed content.
// The version suffix allows the encoding to evolve.
const DomainChangeLog = "progcdc/changelog/v1"

// changeEnvelope is the tagged wire form shared by all variants.
type changeEnvelope struct {
	Type      ChangeKind   `json:"type"`
	Timestamp *time.Time   `json:"timestamp,omitempty"`
	Machine   string       `json:"machine,omitempty"`
	Sheet     *Sheet       `json:"sheet,omitempty"`
	Parts     Parts        `json:"parts,omitempty"`
	Fields    []SheetField `json:"fields,omitempty"`
	Part      *Part        `json:"part,omitempty"`
}

func (c Posted) envelope() changeEnvelope {
	ts, sheet := c.Timestamp, c.Sheet
	return changeEnvelope{Type: KindPosted, Timestamp: &ts, Machine: c.Machine, Sheet: &sheet, Parts: c.Parts}
}

func (c Deleted) envelope() changeEnvelope {
	ts := c.Timestamp
	return changeEnvelope{Type: KindDeleted, Timestamp: &ts}
}

func (c Completed) envelope() changeEnvelope {
	ts := c.Timestamp
	return changeEnvelope{Type: KindCompleted, Timestamp: &ts}
}

func (RePosted) envelope() changeEnvelope { return changeEnvelope{Type: KindRePosted} }

func (c ChangeMachine) envelope() changeEnvelope {
	return changeEnvelope{Type: KindChangeMachine, Machine: c.Machine}
}

func (c SwapSheet) envelope() changeEnvelope {
	sheet := c.Sheet
	return changeEnvelope{Type: KindSwapSheet, Sheet: &sheet}
}

func (c UpdatedSheetData) envelope() changeEnvelope {
	return changeEnvelope{Type: KindUpdatedSheetData, Fields: c.Fields}
}

func (c AddPart) envelope() changeEnvelope {
	p := c.Part
	return changeEnvelope{Type: KindAddPart, Part: &p}
}

func (c ChangePartQty) envelope() changeEnvelope {
	p := c.Part
	return changeEnvelope{Type: KindChangePartQty, Part: &p}
}

func (c DeletePart) envelope() changeEnvelope {
	p := c.Part
	return changeEnvelope{Type: KindDeletePart, Part: &p}
}

// decode turns a wire envelope back into its variant.
func (e changeEnvelope) decode() (Change, error) {
	needTime := func() (time.Time, error) {
		if e.Timestamp == nil {
			return time.Time{}, fmt.Errorf("%s: missing timestamp", e.Type)
		}
		return *e.Timestamp, nil
	}
	needPart := func() (Part, error) {
		if e.Part == nil {
			return Part{}, fmt.Errorf("%s: missing part", e.Type)
		}
		return *e.Part, nil
	}

	switch e.Type {
	case KindPosted:
		ts, err := needTime()
		if err != nil {
			return nil, err
		}
		if e.Sheet == nil {
			return nil, fmt.Errorf("%s: missing sheet", e.Type)
		}
		parts := e.Parts
		if parts == nil {
			parts = Parts{}
		}
		return Posted{Timestamp: ts, Machine: e.Machine, Sheet: *e.Sheet, Parts: parts}, nil
	case KindDeleted:
		ts, err := needTime()
		if err != nil {
			return nil, err
		}
		return Deleted{Timestamp: ts}, nil
	case KindCompleted:
		ts, err := needTime()
		if err != nil {
			return nil, err
		}
		return Completed{Timestamp: ts}, nil
	case KindRePosted:
		return RePosted{}, nil
	case KindChangeMachine:
		return ChangeMachine{Machine: e.Machine}, nil
	case KindSwapSheet:
		if e.Sheet == nil {
			return nil, fmt.Errorf("%s: missing sheet", e.Type)
		}
		return SwapSheet{Sheet: *e.Sheet}, nil
	case KindUpdatedSheetData:
		return UpdatedSheetData{Fields: e.Fields}, nil
	case KindAddPart:
		p, err := needPart()
		if err != nil {
			return nil, err
		}
		return AddPart{Part: p}, nil
	case KindChangePartQty:
		p, err := needPart()
		if err != nil {
			return nil, err
		}
		return ChangePartQty{Part: p}, nil
	case KindDeletePart:
		p, err := needPart()
		if err != nil {
			return nil, err
		}
		return DeletePart{Part: p}, nil
	default:
		return nil, fmt.Errorf("unknown change type %q", e.Type)
	}
}

type changeLogJSON struct {
	ProgramID ProgramID        `json:"program_id"`
	Changes   []changeEnvelope `json:"changes"`
}

// MarshalJSON encodes the log with each change tagged by its kind.
func (l ChangeLog) MarshalJSON() ([]byte, error) {
	out := changeLogJSON{
		ProgramID: l.ProgramID,
		Changes:   make([]changeEnvelope, len(l.Changes)),
	}
	for i, c := range l.Changes {
		out.Changes[i] = c.envelope()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a tagged log. Unknown change types are rejected.
func (l *ChangeLog) UnmarshalJSON(data []byte) error {
	var in changeLogJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("unmarshal change log: %w", err)
	}
	changes := make([]Change, len(in.Changes))
	for i, env := range in.Changes {
		c, err := env.decode()
		if err != nil {
			return fmt.Errorf("unmarshal change log: change[%d]: %w", i, err)
		}
		changes[i] = c
	}
	l.ProgramID = in.ProgramID
	l.Changes = changes
	return nil
}

// Digest returns a content hash of the log:
// SHA256(DomainChangeLog + 0x00 + JSON).
func Digest(l ChangeLog) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainChangeLog))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
