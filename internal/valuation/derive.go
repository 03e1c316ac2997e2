package valuation

import "strings"

// Provinces is the fixed voivodeship list offered by the forms.
var Provinces = []string{
	"Dolnośląskie", "Kujawsko-pomorskie", "Lubelskie", "Lubuskie", "Łódzkie",
	"Małopolskie", "Mazowieckie", "Opolskie", "Podkarpackie", "Podlaskie",
	"Pomorskie", "Śląskie", "Świętokrzyskie", "Warmińsko-mazurskie",
	"Wielkopolskie", "Zachodniopomorskie",
}

var cityToProvince = map[string]string{
	"warszawa":            "Mazowieckie",
	"radom":               "Mazowieckie",
	"płock":               "Mazowieckie",
	"kraków":              "Małopolskie",
	"tarnów":              "Małopolskie",
	"łódź":                "Łódzkie",
	"wrocław":             "Dolnośląskie",
	"wałbrzych":           "Dolnośląskie",
	"poznań":              "Wielkopolskie",
	"gdańsk":              "Pomorskie",
	"gdynia":              "Pomorskie",
	"sopot":               "Pomorskie",
	"szczecin":            "Zachodniopomorskie",
	"bydgoszcz":           "Kujawsko-pomorskie",
	"toruń":               "Kujawsko-pomorskie",
	"lublin":              "Lubelskie",
	"katowice":            "Śląskie",
	"częstochowa":         "Śląskie",
	"gliwice":             "Śląskie",
	"białystok":           "Podlaskie",
	"rzeszów":             "Podkarpackie",
	"kielce":              "Świętokrzyskie",
	"olsztyn":             "Warmińsko-mazurskie",
	"opole":               "Opolskie",
	"zielona góra":        "Lubuskie",
	"gorzów wielkopolski": "Lubuskie",
}

// DeriveProvince resolves the province for a known city. It is a pure,
// synchronous derivation invoked by the controller on a city change; unknown
// cities leave the province untouched.
func DeriveProvince(city string) (string, bool) {
	province, ok := cityToProvince[strings.ToLower(strings.TrimSpace(city))]
	return province, ok
}
