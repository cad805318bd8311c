package domain

// TransportType: вид транспорта.
type TransportType string

const (
	TransportTypeTruck TransportType = "truck"
	TransportTypeShip  TransportType = "ship"
	TransportTypePlane TransportType = "plane"
	TransportTypeTrain TransportType = "train"
)

// Coordinates: географическая точка.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Transport: транспортная единица. Госномер является идентификатором и не перегенерируется.
type Transport struct {
	RegNumber   string        `json:"regNumber" validate:"required"`
	Type        TransportType `json:"type" validate:"oneof=truck ship plane train"`
	Capacity    float64       `json:"capacity" validate:"gt=0"`
	Coordinates *Coordinates  `json:"coordinates,omitempty" validate:"omitempty"`
	// ContractorID: перевозчик-владелец; при заданном значении обязан иметь роль carrier.
	ContractorID *int64 `json:"contractorId,omitempty" validate:"omitempty,gt=0"`
}

// Validate проверяет поля транспорта.
func (t *Transport) Validate() error {
	return validateStruct(t).OrNil()
}

// TransportPatch: частичное обновление транспорта. Госномер не меняется.
type TransportPatch struct {
	Type         *TransportType `json:"type,omitempty"`
	Capacity     *float64       `json:"capacity,omitempty"`
	Coordinates  *Coordinates   `json:"coordinates,omitempty"`
	ContractorID *int64         `json:"contractorId,omitempty"`
}

// Apply переносит заданные поля в транспорт.
func (p TransportPatch) Apply(t *Transport) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Capacity != nil {
		t.Capacity = *p.Capacity
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		t.Coordinates = &c
	}
	if p.ContractorID != nil {
		id := *p.ContractorID
		t.ContractorID = &id
	}
}
