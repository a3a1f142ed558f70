package wizard

import (
	"bytes"
	"fmt"

	"cancelflow/pkg/jsonx"
)

// Screens are persisted as flat objects: {"screen":"<tag>", ...fields}.

// MarshalScreen encodes s with its tag as the leading "screen" field.
func MarshalScreen(s Screen) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil screen", ErrInvalidHistory)
	}
	fields, err := jsonx.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.Tag(), err)
	}
	tag, err := jsonx.Marshal(s.Tag())
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteString(`{"screen":`)
	b.Write(tag)
	if inner := bytes.TrimSpace(fields[1 : len(fields)-1]); len(inner) > 0 {
		b.WriteByte(',')
		b.Write(inner)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

type screenDecoder func([]byte) (Screen, error)

func decodeAs[T Screen](fix func(*T)) screenDecoder {
	return func(data []byte) (Screen, error) {
		var s T
		if err := jsonx.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		if fix != nil {
			fix(&s)
		}
		return s, nil
	}
}

// Branch fields are derived from the tag, which is authoritative.
func visaSupport(mm bool) screenDecoder {
	return decodeAs(func(s *VisaSupport) { s.FoundJobUsingMM = mm })
}

func visaType(mm, lawyer bool) screenDecoder {
	return decodeAs(func(s *VisaTypeInput) {
		s.FoundJobUsingMM = mm
		s.HasImmigrationLawyer = lawyer
	})
}

func reasonDetail(kind Reason) screenDecoder {
	return decodeAs(func(s *ReasonDetail) { s.Kind = kind })
}

var screenDecoders = map[ScreenTag]screenDecoder{
	TagStart:          decodeAs[Start](nil),
	TagJobFoundSurvey: decodeAs[JobFoundSurvey](nil),
	TagFeedback:       decodeAs[Feedback](nil),

	TagVisaSupportMM: visaSupport(true),
	TagVisaSupport:   visaSupport(false),

	TagVisaTypeMMLawyer:   visaType(true, true),
	TagVisaTypeMMNoLawyer: visaType(true, false),
	TagVisaTypeLawyer:     visaType(false, true),
	TagVisaTypeNoLawyer:   visaType(false, false),

	TagCompleteNoVisaNeeded: decodeAs[TerminalNoVisaNeeded](nil),
	TagCompleteVisaHandoff:  decodeAs[TerminalVisaHandoff](nil),

	TagDownsellOffer:       decodeAs[DownsellOffer](nil),
	TagOfferAccepted:       decodeAs[OfferAccepted](nil),
	TagOfferDeclinedSurvey: decodeAs[OfferDeclinedSurvey](nil),
	TagCancellationReason:  decodeAs[CancellationReason](nil),

	TagReasonTooExpensive:       reasonDetail(ReasonTooExpensive),
	TagReasonPlatformNotHelpful: reasonDetail(ReasonPlatformNotHelpful),
	TagReasonNotEnoughJobs:      reasonDetail(ReasonNotEnoughJobs),
	TagReasonNotMoving:          reasonDetail(ReasonNotMoving),
	TagReasonOther:              reasonDetail(ReasonOther),

	TagCancellationComplete: decodeAs[CancellationComplete](nil),
}

// KnownTag reports whether tag names a screen of the graph.
func KnownTag(tag ScreenTag) bool {
	_, ok := screenDecoders[tag]
	return ok
}

func UnmarshalScreen(data []byte) (Screen, error) {
	var head struct {
		Screen ScreenTag `json:"screen"`
	}
	if err := jsonx.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode screen: %w", err)
	}
	dec, ok := screenDecoders[head.Screen]
	if !ok {
		return nil, fmt.Errorf("%w: unknown screen %q", ErrInvalidHistory, head.Screen)
	}
	s, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Screen, err)
	}
	return s, nil
}

func (h History) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, s := range h {
		if i > 0 {
			b.WriteByte(',')
		}
		enc, err := MarshalScreen(s)
		if err != nil {
			return nil, err
		}
		b.Write(enc)
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (h *History) UnmarshalJSON(data []byte) error {
	var raw []jsonx.RawMessage
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	out := make(History, 0, len(raw))
	for i, r := range raw {
		s, err := UnmarshalScreen(r)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, s)
	}
	*h = out
	return nil
}

// DecodeHistory parses a persisted history and checks its invariants.
func DecodeHistory(data []byte) (History, error) {
	var h History
	if err := jsonx.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}
