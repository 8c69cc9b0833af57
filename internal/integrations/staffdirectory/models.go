package staffdirectory

// StaffMember сотрудник из сервиса персонала
type StaffMember struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	CanTakeAppointments bool   `json:"can_take_appointments"`
}

// StaffListResponse ответ со списком сотрудников на дату
type StaffListResponse struct {
	Date  string        `json:"date"`
	Staff []StaffMember `json:"staff"`
}
