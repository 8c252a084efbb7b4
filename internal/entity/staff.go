package entity

type StaffLoginData struct {
	ID       string
	Username string
}
