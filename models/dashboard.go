package models

type DashboardStats struct {
	TournamentsTotal     int          `json:"tournamentsTotal"`
	TournamentsActive    int          `json:"tournamentsActive"`
	ClubsTotal           int          `json:"clubsTotal"`
	RegistrationsTotal   int          `json:"registrationsTotal"`
	RegistrationsPending int          `json:"registrationsPending"`
	UnreadNotifications  int          `json:"unreadNotifications"`
	UpcomingTournaments  []Tournament `json:"upcomingTournaments"`
}
