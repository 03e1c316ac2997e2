package valuation

import "testing"

func TestDeriveProvince(t *testing.T) {
	cases := []struct {
		city string
		want string
	}{
		{"Warszawa", "Mazowieckie"},
		{"warszawa", "Mazowieckie"},
		{"  Kraków  ", "Małopolskie"},
		{"GDAŃSK", "Pomorskie"},
		{"Zielona Góra", "Lubuskie"},
	}
	for _, tc := range cases {
		got, ok := DeriveProvince(tc.city)
		if !ok || got != tc.want {
			t.Fatalf("DeriveProvince(%q) = %q, %v; want %q", tc.city, got, ok, tc.want)
		}
	}
}

func TestDeriveProvinceUnknownCity(t *testing.T) {
	for _, city := range []string{"Pcim", "", "   "} {
		if got, ok := DeriveProvince(city); ok {
			t.Fatalf("DeriveProvince(%q) = %q, true; want miss", city, got)
		}
	}
}
