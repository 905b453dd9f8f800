package summarizer

import "iter"

// SliceStream replays a fixed list of events, optionally failing at the end.
type SliceStream struct {
	events []Event
	pos    int
	err    error
	closed bool
}

func NewSliceStream(events []Event, err error) *SliceStream {
	return &SliceStream{events: events, pos: -1, err: err}
}

func (s *SliceStream) Next() bool {
	if s.closed || s.pos+1 >= len(s.events) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceStream) Current() Event {
	if s.pos < 0 || s.pos >= len(s.events) {
		return Event{}
	}
	return s.events[s.pos]
}

func (s *SliceStream) Err() error { return s.err }

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

func (s *SliceStream) Closed() bool { return s.closed }

// SeqStream adapts a push iterator (the shape genai streams come in) to a DeltaStream.
type SeqStream struct {
	next    func() (Event, error, bool)
	stop    func()
	current Event
	err     error
}

func NewSeqStream(seq iter.Seq2[Event, error]) *SeqStream {
	next, stop := iter.Pull2(seq)
	return &SeqStream{next: next, stop: stop}
}

func (s *SeqStream) Next() bool {
	if s.err != nil {
		return false
	}
	ev, err, ok := s.next()
	if !ok {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	s.current = ev
	return true
}

func (s *SeqStream) Current() Event { return s.current }

func (s *SeqStream) Err() error { return s.err }

func (s *SeqStream) Close() error {
	s.stop()
	return nil
}

// Text is a small helper for building events.
func Text(s string) *string { return &s }
