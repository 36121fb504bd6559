package scraper

// Columns: заголовок выходной таблицы; порядок фиксирован
var Columns = []string{
	"RoomCount", "AllArea",
	"LivingArea", "KitchenArea",
	"Floor", "FloorsCount",
	"ContactType", "ContactName",
	"FondationYear", "HousingType",
	"CeilingHeight", "Restroom",
	"Balcony/Loggia", "RenovationType",
	"WindowView", "Price",
}

// Offer: плоская запись атрибутов одного объявления.
// Пустая строка означает, что поле на странице не найдено.
type Offer struct {
	RoomCount      string
	AllArea        string
	LivingArea     string
	KitchenArea    string
	Floor          string
	FloorsCount    string
	ContactType    string
	ContactName    string
	FoundationYear string
	HousingType    string
	CeilingHeight  string
	Restroom       string
	BalconyLoggia  string
	RenovationType string
	WindowView     string
	Price          string
}

// Record возвращает значения в порядке Columns
func (o *Offer) Record() []string {
	return []string{
		o.RoomCount, o.AllArea,
		o.LivingArea, o.KitchenArea,
		o.Floor, o.FloorsCount,
		o.ContactType, o.ContactName,
		o.FoundationYear, o.HousingType,
		o.CeilingHeight, o.Restroom,
		o.BalconyLoggia, o.RenovationType,
		o.WindowView, o.Price,
	}
}

// Merge переносит непустые поля other, не перетирая уже заполненные
func (o *Offer) Merge(other *Offer) {
	if other == nil {
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&o.RoomCount, other.RoomCount)
	fill(&o.AllArea, other.AllArea)
	fill(&o.LivingArea, other.LivingArea)
	fill(&o.KitchenArea, other.KitchenArea)
	fill(&o.Floor, other.Floor)
	fill(&o.FloorsCount, other.FloorsCount)
	fill(&o.ContactType, other.ContactType)
	fill(&o.ContactName, other.ContactName)
	fill(&o.FoundationYear, other.FoundationYear)
	fill(&o.HousingType, other.HousingType)
	fill(&o.CeilingHeight, other.CeilingHeight)
	fill(&o.Restroom, other.Restroom)
	fill(&o.BalconyLoggia, other.BalconyLoggia)
	fill(&o.RenovationType, other.RenovationType)
	fill(&o.WindowView, other.WindowView)
	fill(&o.Price, other.Price)
}
