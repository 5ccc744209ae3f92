package reconcile

import "github.com/ruifgomes/orderdesk/internal/domain"

// Session owns the working copy of one order edit. The original snapshot is
// taken once at construction and never mutated; every mutator works on the
// copy, so HasChanges and BuildRequest always diff against the state the
// user started from. Submission failures keep the session intact for retry.
type Session struct {
	origItems []domain.LineItem
	origLines []domain.ShippingLine
	items     []domain.LineItem
	lines     []domain.ShippingLine
}

func NewSession(order *domain.Order) *Session {
	s := &Session{
		origItems: make([]domain.LineItem, len(order.LineItems)),
		origLines: make([]domain.ShippingLine, len(order.ShippingLines)),
	}
	copy(s.origItems, order.LineItems)
	copy(s.origLines, order.ShippingLines)
	s.items = append([]domain.LineItem(nil), s.origItems...)
	s.lines = append([]domain.ShippingLine(nil), s.origLines...)
	return s
}

// Items returns the working copy for rendering.
func (s *Session) Items() []domain.LineItem {
	return s.items
}

func (s *Session) ShippingLines() []domain.ShippingLine {
	return s.lines
}

// AddItem appends a freshly selected variant. If the variant is already in
// the working set as an unpersisted item its quantity is bumped instead, the
// way repeated product selection behaves in the edit view.
func (s *Session) AddItem(item domain.LineItem) {
	if !item.Persisted() {
		for i := range s.items {
			if !s.items[i].Persisted() && s.items[i].VariantID == item.VariantID {
				s.items[i].Quantity += item.Quantity
				return
			}
		}
	}
	s.items = append(s.items, item)
}

// RemoveItem drops the row at pos. Persisted rows are not deleted anywhere
// else; their absence from the built request is what signals deletion.
func (s *Session) RemoveItem(pos int) {
	if pos < 0 || pos >= len(s.items) {
		return
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
}

func (s *Session) SetQuantity(pos, quantity int) {
	if pos < 0 || pos >= len(s.items) || quantity < 1 {
		return
	}
	s.items[pos].Quantity = quantity
}

func (s *Session) SetNote(pos int, note string) {
	if pos < 0 || pos >= len(s.items) {
		return
	}
	s.items[pos].Note = note
}

// SetShippingLine replaces or adds the single custom shipping fee the edit
// view exposes. The model keeps a collection, the UI edits one line.
func (s *Session) SetShippingLine(title string, price int64) {
	line := domain.ShippingLine{Title: title, Price: price, Type: domain.ShippingLineTypeCustom}
	if len(s.lines) == 0 {
		s.lines = append(s.lines, line)
		return
	}
	line.ID = s.lines[0].ID
	s.lines[0] = line
}

func (s *Session) RemoveShippingLine(pos int) {
	if pos < 0 || pos >= len(s.lines) {
		return
	}
	s.lines = append(s.lines[:pos], s.lines[pos+1:]...)
}

func (s *Session) HasChanges() bool {
	return HasChanges(s.origItems, s.items, s.origLines, s.lines)
}

func (s *Session) BuildRequest(sendEmail bool) UpdateItemsRequest {
	return BuildUpdateRequest(s.origItems, s.items, s.origLines, s.lines, sendEmail)
}
