package main

import (
	"log"

	"homologacao/internal/database"
	"homologacao/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a local database with one company, one union with two
// responsibles and their weekly capacity, so the API can be exercised
// right away.
func main() {
	db, err := database.Connect("homologacao.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM signatures")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM documents")
	db.Exec("DELETE FROM cases")
	db.Exec("DELETE FROM capacity_windows")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	users := []domain.User{
		{Email: "admin@homologacao.local", Name: "Administrador", Role: domain.RoleAdmin},
		{Email: "rh@empresa.local", Name: "RH Empresa", Role: domain.RoleCompany, CompanyID: 1},
		{Email: "ana@sindicato.local", Name: "Ana Responsável", Role: domain.RoleUnion, UnionID: 1},
		{Email: "bruno@sindicato.local", Name: "Bruno Responsável", Role: domain.RoleUnion, UnionID: 1},
	}
	for i := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		users[i].PasswordHash = string(hash)
		if err := db.Create(&users[i]).Error; err != nil {
			log.Fatal(err)
		}
	}

	log.Println("Creating capacity windows...")

	windows := []domain.CapacityWindow{
		// Ana: Mon/Wed mornings with a coffee break
		{UnionID: 1, ResponsibleID: users[2].ID, Weekday: 1, StartTime: "08:00", EndTime: "12:00", BreakStart: "10:00", BreakEnd: "10:15", SlotDurationMin: 30},
		{UnionID: 1, ResponsibleID: users[2].ID, Weekday: 3, StartTime: "08:00", EndTime: "12:00", BreakStart: "10:00", BreakEnd: "10:15", SlotDurationMin: 30},
		// Bruno: Tue/Thu afternoons, no break
		{UnionID: 1, ResponsibleID: users[3].ID, Weekday: 2, StartTime: "13:00", EndTime: "17:00", SlotDurationMin: 45},
		{UnionID: 1, ResponsibleID: users[3].ID, Weekday: 4, StartTime: "13:00", EndTime: "17:00", SlotDurationMin: 45},
	}
	for i := range windows {
		if err := db.Create(&windows[i]).Error; err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("Seed complete: %d users, %d capacity windows", len(users), len(windows))
	log.Println("Login with any seeded e-mail and password `senha123`")
}
