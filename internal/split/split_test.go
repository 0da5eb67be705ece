package split_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/initra/procflow/internal/split"
)

var (
	vendorA = uuid.New()
	vendorB = uuid.New()
)

func fixtureItems() []split.RequisitionItem {
	return []split.RequisitionItem{
		{Description: "cement", Unit: "bag", Quantity: 100, EstimatedUnitPrice: 900},
		{Description: "rebar", Unit: "ton", Quantity: 5, EstimatedUnitPrice: 95000},
		{Description: "sand", Unit: "ton", Quantity: 20, EstimatedUnitPrice: 3000},
	}
}

// quoteA covers all three lines; quoteB skips the middle line.
func fixtureQuotations() (split.Quotation, split.Quotation) {
	quoteA := split.Quotation{
		ID:             uuid.New(),
		VendorID:       vendorA,
		TaxBasisPoints: 1500,
		Items: []*split.QuoteItem{
			{Quantity: 100, UnitPrice: 850},
			{Quantity: 5, UnitPrice: 92000},
			{Quantity: 20, UnitPrice: 3100},
		},
	}
	quoteB := split.Quotation{
		ID:             uuid.New(),
		VendorID:       vendorB,
		TaxBasisPoints: 0,
		Items: []*split.QuoteItem{
			{Quantity: 100, UnitPrice: 820},
			nil,
			{Quantity: 20, UnitPrice: 2900},
		},
	}
	return quoteA, quoteB
}

func TestAssignVendorToggle(t *testing.T) {
	quoteA, quoteB := fixtureQuotations()
	quotations := []split.Quotation{quoteA, quoteB}

	a, err := split.AssignVendor(split.Assignments{}, 0, quoteA.ID, quotations)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if a[0] != quoteA.ID {
		t.Fatalf("assignment = %v, want %v", a[0], quoteA.ID)
	}

	// assigning a different quotation replaces
	a, err = split.AssignVendor(a, 0, quoteB.ID, quotations)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if a[0] != quoteB.ID {
		t.Fatalf("assignment = %v, want %v", a[0], quoteB.ID)
	}

	// assigning the same quotation again clears
	a, err = split.AssignVendor(a, 0, quoteB.ID, quotations)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if _, ok := a[0]; ok {
		t.Fatal("assignment not cleared on toggle")
	}
}

func TestAssignVendorNeverMutatesInput(t *testing.T) {
	quoteA, _ := fixtureQuotations()
	quotations := []split.Quotation{quoteA}

	original := split.Assignments{1: quoteA.ID}
	updated, err := split.AssignVendor(original, 0, quoteA.ID, quotations)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if len(original) != 1 {
		t.Errorf("input map mutated: %v", original)
	}
	if len(updated) != 2 {
		t.Errorf("updated = %v, want two entries", updated)
	}
}

func TestAssignVendorErrors(t *testing.T) {
	quoteA, quoteB := fixtureQuotations()
	quotations := []split.Quotation{quoteA, quoteB}

	_, err := split.AssignVendor(split.Assignments{}, 0, uuid.New(), quotations)
	if !errors.Is(err, split.ErrQuotationNotFound) {
		t.Errorf("unknown quotation error = %v, want ErrQuotationNotFound", err)
	}

	// quoteB did not quote index 1
	_, err = split.AssignVendor(split.Assignments{}, 1, quoteB.ID, quotations)
	if !errors.Is(err, split.ErrItemNotQuoted) {
		t.Errorf("unquoted item error = %v, want ErrItemNotQuoted", err)
	}

	_, err = split.AssignVendor(split.Assignments{}, 5, quoteA.ID, quotations)
	if !errors.Is(err, split.ErrItemNotQuoted) {
		t.Errorf("out of range error = %v, want ErrItemNotQuoted", err)
	}
}

func TestAllAssigned(t *testing.T) {
	quoteA, _ := fixtureQuotations()

	a := split.Assignments{0: quoteA.ID, 1: quoteA.ID}
	if split.AllAssigned(a, 3) {
		t.Error("AllAssigned = true with a gap at index 2")
	}

	a[2] = quoteA.ID
	if !split.AllAssigned(a, 3) {
		t.Error("AllAssigned = false with full coverage")
	}

	if !split.AllAssigned(split.Assignments{}, 0) {
		t.Error("AllAssigned = false for zero items")
	}
}

func TestCreateSplitOrders(t *testing.T) {
	items := fixtureItems()
	quoteA, quoteB := fixtureQuotations()
	quotations := []split.Quotation{quoteA, quoteB}

	a := split.Assignments{
		0: quoteB.ID,
		1: quoteA.ID,
		2: quoteB.ID,
	}

	drafts, err := split.CreateSplitOrders(items, quotations, a)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}

	// vendor B owns index 0, so its draft comes first
	b := drafts[0]
	if b.VendorID != vendorB {
		t.Fatalf("first draft vendor = %v, want %v", b.VendorID, vendorB)
	}
	if len(b.Lines) != 2 || b.Lines[0].ItemIndex != 0 || b.Lines[1].ItemIndex != 2 {
		t.Fatalf("vendor B lines = %+v", b.Lines)
	}
	if b.Lines[0].UnitPrice != 820 {
		t.Errorf("line priced from requisition estimate, not quotation: %d", b.Lines[0].UnitPrice)
	}
	wantSubtotal := int64(100*820 + 20*2900)
	if b.Subtotal != wantSubtotal {
		t.Errorf("subtotal = %d, want %d", b.Subtotal, wantSubtotal)
	}
	if b.Tax != 0 || b.Total != wantSubtotal {
		t.Errorf("tax/total = %d/%d, want 0/%d", b.Tax, b.Total, wantSubtotal)
	}

	av := drafts[1]
	if av.VendorID != vendorA || len(av.Lines) != 1 {
		t.Fatalf("second draft = %+v", av)
	}
	wantSub := int64(5 * 92000)
	wantTax := wantSub * 1500 / 10000
	if av.Subtotal != wantSub || av.Tax != wantTax || av.Total != wantSub+wantTax {
		t.Errorf("totals = %d/%d/%d, want %d/%d/%d",
			av.Subtotal, av.Tax, av.Total, wantSub, wantTax, wantSub+wantTax)
	}
}

func TestCreateSplitOrdersSkipsUnassigned(t *testing.T) {
	items := fixtureItems()
	quoteA, _ := fixtureQuotations()
	quotations := []split.Quotation{quoteA}

	drafts, err := split.CreateSplitOrders(items, quotations, split.Assignments{1: quoteA.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(drafts) != 1 || len(drafts[0].Lines) != 1 {
		t.Fatalf("drafts = %+v, want one draft with one line", drafts)
	}
	if drafts[0].Lines[0].ItemIndex != 1 {
		t.Errorf("line index = %d, want 1", drafts[0].Lines[0].ItemIndex)
	}
}

func TestCreateSplitOrdersEmptyAssignments(t *testing.T) {
	items := fixtureItems()
	quoteA, _ := fixtureQuotations()

	drafts, err := split.CreateSplitOrders(items, []split.Quotation{quoteA}, split.Assignments{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(drafts) != 0 {
		t.Fatalf("drafts = %d, want 0", len(drafts))
	}
}

func TestCreateSplitOrdersStaleAssignment(t *testing.T) {
	items := fixtureItems()
	quoteA, _ := fixtureQuotations()

	_, err := split.CreateSplitOrders(items, []split.Quotation{quoteA}, split.Assignments{0: uuid.New()})
	if !errors.Is(err, split.ErrQuotationNotFound) {
		t.Fatalf("error = %v, want ErrQuotationNotFound", err)
	}
}
