package migration

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var files embed.FS

// Run aplica as migrações pendentes no banco apontado pelo DSN. As migrações
// são embutidas no binário, então não há dependência de arquivos no disco.
func Run(dsn string) error {
	driver, err := iofs.New(files, "sql")
	if err != nil {
		return errors.Wrap(err, "migration: erro ao abrir migrações embutidas")
	}
	defer driver.Close()

	m, err := migrate.NewWithSourceInstance("iofs", driver, dsn)
	if err != nil {
		return errors.Wrap(err, "migration: erro ao criar instância de migração")
	}
	defer m.Close()

	_, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "migration: erro ao consultar versão do schema")
	}

	if dirty {
		return errors.New("migration: banco de dados em estado sujo, intervenção manual necessária")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration: erro ao aplicar migrações")
	}

	logrus.Info("Migrações de banco de dados aplicadas com sucesso")

	return nil
}
