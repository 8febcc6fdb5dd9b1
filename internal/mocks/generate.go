package mocks

//go:generate mockery --name HealthChecker --srcpkg github.com/aevon-lab/salesdash/internal/server --output ./server --outpkg servermocks --with-expecter
//go:generate mockery --name Source --srcpkg github.com/aevon-lab/salesdash/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
