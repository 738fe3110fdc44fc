package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type TenantID string

func NewTenantID(id string) TenantID { return TenantID(id) }
func (t TenantID) String() string    { return string(t) }
func (t TenantID) IsEmpty() bool     { return string(t) == "" }

type FlightID string

func NewFlightID(id string) FlightID { return FlightID(id) }
func (f FlightID) String() string    { return string(f) }
func (f FlightID) IsEmpty() bool     { return string(f) == "" }
