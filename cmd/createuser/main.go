// createuser da de alta un usuario activo para obtener tokens en /api/token/.
//
// Uso: go run ./cmd/createuser -username ana [-password ...]
// Si no se pasa -password se lee de la variable CREATEUSER_PASSWORD.
// Usa la misma configuración de base de datos que la API (DB_DRIVER, DATABASE_URL, SQLITE_PATH).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventory-items/internal/application/auth"
	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/infrastructure/storage"
	"github.com/jhoicas/inventory-items/pkg/config"
)

func main() {
	username := flag.String("username", "", "nombre de usuario")
	password := flag.String("password", os.Getenv("CREATEUSER_PASSWORD"), "contraseña (mínimo 8 caracteres)")
	flag.Parse()

	if err := run(*username, *password); err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			for field, msgs := range verr.Fields {
				fmt.Fprintf(os.Stderr, "%s: %v\n", field, msgs)
			}
		case errors.Is(err, domain.ErrDuplicate):
			fmt.Fprintf(os.Stderr, "El usuario %q ya existe\n", *username)
		default:
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

func run(username, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("abrir base de datos: %w", err)
	}
	defer st.Close()

	uc := auth.NewAuthUseCase(st.Users, auth.JWTConfig{})
	user, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	fmt.Printf("Usuario creado: %s (%s)\n", user.Username, user.ID)
	return nil
}
