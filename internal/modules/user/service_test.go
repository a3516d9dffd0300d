// README: Account service tests (registration, credentials, moderation).
package user

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"ridehub/internal/types"
)

func adminActor(id types.ID) types.Identity {
	return types.Identity{UserID: id, Role: types.RoleAdmin}
}

func selfActor(id types.ID) types.Identity {
	return types.Identity{UserID: id, Role: types.RoleRider}
}

func testUserService(t *testing.T) *Service {
	t.Helper()
	return NewService(setupTestStore(t), nil)
}

func mustRegister(t *testing.T, svc *Service, name, email string, role types.Role) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterCommand{
		Name:     name,
		Email:    email,
		Password: "hunter22",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

// Validation failures happen before any store access, so this test runs
// without a database.
func TestRegisterValidation(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  RegisterCommand
		want error
	}{
		{"empty name", RegisterCommand{Email: "a@b.c", Password: "secret1"}, ErrBadRequest},
		{"empty email", RegisterCommand{Name: "A", Password: "secret1"}, ErrBadRequest},
		{"short password", RegisterCommand{Name: "A", Email: "a@b.c", Password: "abc"}, ErrBadRequest},
		{"unknown role", RegisterCommand{Name: "A", Email: "a@b.c", Password: "secret1", Role: "root"}, ErrBadRequest},
		{"admin self-issue", RegisterCommand{Name: "A", Email: "a@b.c", Password: "secret1", Role: types.RoleAdmin}, ErrForbidden},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.cmd); err != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := testUserService(t)
	ctx := context.Background()

	u := mustRegister(t, svc, "Alice", "Alice@Example.COM", "")
	if u.Role != types.RoleRider {
		t.Fatalf("default role = %s, want rider", u.Role)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", u.Email)
	}
	if u.PasswordHash == "hunter22" || u.PasswordHash == "" {
		t.Fatal("password stored without hashing")
	}

	got, err := svc.Authenticate(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated wrong account: %s", got.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrongpass"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "hunter22"); err != ErrInvalidCredentials {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := testUserService(t)

	mustRegister(t, svc, "Alice", "alice@example.com", "")
	_, err := svc.Register(context.Background(), RegisterCommand{
		Name:     "Imposter",
		Email:    "ALICE@example.com",
		Password: "hunter22",
	})
	if err != ErrEmailTaken {
		t.Fatalf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestBlockAndUnblock(t *testing.T) {
	svc := testUserService(t)
	ctx := context.Background()

	u := mustRegister(t, svc, "Alice", "alice@example.com", "")
	adm := adminActor("admin1")

	blocked, err := svc.Block(ctx, u.ID, adm)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if !blocked.Blocked {
		t.Fatal("user not marked blocked")
	}

	// Blocked accounts cannot log in.
	if _, err := svc.Authenticate(ctx, "alice@example.com", "hunter22"); err != ErrForbidden {
		t.Fatalf("blocked login: got %v, want ErrForbidden", err)
	}

	// Blocking an already-blocked account is rejected.
	if _, err := svc.Block(ctx, u.ID, adm); err != ErrBadRequest {
		t.Fatalf("double block: got %v, want ErrBadRequest", err)
	}

	unblocked, err := svc.Unblock(ctx, u.ID, adm)
	if err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if unblocked.Blocked {
		t.Fatal("user still blocked")
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "hunter22"); err != nil {
		t.Fatalf("login after unblock: %v", err)
	}
}

func TestBlockPolicy(t *testing.T) {
	svc := testUserService(t)
	ctx := context.Background()

	u := mustRegister(t, svc, "Alice", "alice@example.com", "")

	if _, err := svc.Block(ctx, u.ID, selfActor("rider1")); err != ErrForbidden {
		t.Fatalf("non-admin block: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Block(ctx, "admin1", adminActor("admin1")); err != ErrBadRequest {
		t.Fatalf("self block: got %v, want ErrBadRequest", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := testUserService(t)
	ctx := context.Background()

	u := mustRegister(t, svc, "Alice", "alice@example.com", "")
	other := mustRegister(t, svc, "Bob", "bob@example.com", "")

	newName := "Alice Cooper"
	updated, err := svc.Update(ctx, UpdateCommand{ID: u.ID, Actor: selfActor(u.ID), Name: &newName})
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("name = %q, want %q", updated.Name, newName)
	}

	// Taking another account's email is rejected.
	takenEmail := "bob@example.com"
	if _, err := svc.Update(ctx, UpdateCommand{ID: u.ID, Actor: selfActor(u.ID), Email: &takenEmail}); err != ErrEmailTaken {
		t.Fatalf("taken email: got %v, want ErrEmailTaken", err)
	}

	// Role changes are admin-only.
	driverRole := types.RoleDriver
	if _, err := svc.Update(ctx, UpdateCommand{ID: u.ID, Actor: selfActor(u.ID), Role: &driverRole}); err != ErrForbidden {
		t.Fatalf("self role change: got %v, want ErrForbidden", err)
	}
	promoted, err := svc.Update(ctx, UpdateCommand{ID: u.ID, Actor: adminActor("admin1"), Role: &driverRole})
	if err != nil {
		t.Fatalf("admin role change: %v", err)
	}
	if promoted.Role != types.RoleDriver {
		t.Fatalf("role = %s, want driver", promoted.Role)
	}

	// Editing someone else's profile is rejected.
	if _, err := svc.Update(ctx, UpdateCommand{ID: other.ID, Actor: selfActor(u.ID), Name: &newName}); err != ErrForbidden {
		t.Fatalf("cross-account update: got %v, want ErrForbidden", err)
	}
}

func TestListRequiresAdmin(t *testing.T) {
	svc := testUserService(t)
	ctx := context.Background()

	mustRegister(t, svc, "Alice", "alice@example.com", "")
	mustRegister(t, svc, "Bob", "bob@example.com", types.RoleDriver)

	if _, err := svc.List(ctx, selfActor("rider1")); err != ErrForbidden {
		t.Fatalf("non-admin list: got %v, want ErrForbidden", err)
	}
	users, err := svc.List(ctx, adminActor("admin1"))
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("listed %d users, want 2", len(users))
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("RIDEHUB_TEST_DSN")
	if dsn == "" {
		t.Skip("RIDEHUB_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE users"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(40, len(stmt))], err)
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
