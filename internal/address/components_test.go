package address

import (
	"reflect"
	"testing"
)

func TestComponentSetOrderAndEmptyValues(t *testing.T) {
	cs := NewComponentSet()
	cs.Set(Road, "ул. Ленина")
	cs.Set(City, "г. Москва")
	cs.Set(Postcode, "101000")

	want := []ComponentKey{Road, City, Postcode}
	if got := cs.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	// Overwriting keeps the original position
	cs.Set(Road, "ул. Тверская")
	if got := cs.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after overwrite = %v, want %v", got, want)
	}

	cs.Set(City, "")
	if cs.Has(City) {
		t.Errorf("Set(City, \"\") should remove the key")
	}
	if got := cs.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestComponentSetCloneIsIndependent(t *testing.T) {
	cs := NewComponentSet()
	cs.Set(Road, "ул. Ленина, 5")

	clone := cs.Clone()
	clone.Set(Road, "ул. Ленина")
	clone.Set(HouseNumber, "5")

	if got := cs.Value(Road); got != "ул. Ленина, 5" {
		t.Errorf("original Road = %q, want unchanged", got)
	}
	if cs.Has(HouseNumber) {
		t.Errorf("original gained HouseNumber from clone")
	}
	if cs.Equal(clone) {
		t.Errorf("Equal() = true for diverged sets")
	}
}

func TestComponentSetRow(t *testing.T) {
	cs := NewComponentSet()
	cs.Set(City, "г. Тула")
	cs.Set(Postcode, "300000")

	got := cs.Row(LicenseFieldMap.Keys())
	want := []string{"300000", "", "", "г. Тула", "", "", "", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row() = %q, want %q", got, want)
	}
}

func TestRecordComponents(t *testing.T) {
	rec := Record{
		"index":  "  ",
		"region": "Тульская обл.",
		"street": " г. Тула, ул. Мира, 3 ",
		"extra":  "ignored",
	}

	cs := rec.Components(LicenseFieldMap, nil)

	want := []ComponentKey{State, Road}
	if got := cs.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := cs.Value(Road); got != "г. Тула, ул. Мира, 3" {
		t.Errorf("Road = %q", got)
	}
}

func TestFieldMapValidate(t *testing.T) {
	if err := LicenseFieldMap.Validate(); err != nil {
		t.Errorf("LicenseFieldMap.Validate() = %v", err)
	}

	bad := FieldMap{{Name: "a", Key: "nope"}}
	if err := bad.Validate(); err == nil {
		t.Errorf("Validate() accepted an unknown key")
	}

	dup := FieldMap{{Name: "a", Key: City}, {Name: "a", Key: Road}}
	if err := dup.Validate(); err == nil {
		t.Errorf("Validate() accepted a duplicate field")
	}
}

func TestDiff(t *testing.T) {
	a := FromMap(map[string]string{"road": "ул. Мира", "city": "Тула", "postcode": "301000"})
	b := FromMap(map[string]string{"road": "улица мира", "city": "Тула", "house_number": "3"})

	got := Diff(a, b)
	want := []Difference{
		{Key: HouseNumber, Left: "", Right: "3"},
		{Key: Road, Left: "ул. Мира", Right: "улица мира"},
		{Key: Postcode, Left: "301000", Right: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}
	if d := Diff(a, a.Clone()); d != nil {
		t.Errorf("Diff() of equal sets = %v, want nil", d)
	}
}
