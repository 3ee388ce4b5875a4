package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/config"
	"github.com/kaigo-records/care-records/backend/internal/repository"
	"github.com/kaigo-records/care-records/backend/internal/seed"
	"github.com/kaigo-records/care-records/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var floor int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机职员, 2: 插入随机入住者, 3: 从 CSV 导入入住者, 4: 插入最近几天的随机记录)")
	flag.IntVar(&n, "n", 5, "要插入的职员或入住者数量")
	flag.IntVar(&floor, "floor", 1, "随机入住者所在楼层")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("无法加载设施时区", "error", err)
		return
	}

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的职员数量")
		} else {
			cnt := 0
			for i := 0; i < n; i++ {
				staff, err := utils.GenerateRandomStaff(cfg.Seed.StaffPIN)
				if err != nil {
					slog.Error("无法生成随机职员", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateStaff(staff); err != nil {
					slog.Error("无法插入职员", slog.String("error", err.Error()))
					continue
				}

				cnt++
			}

			slog.Info("插入职员成功", slog.Int("count", cnt), slog.String("pin", cfg.Seed.StaffPIN))
		}
	case 2:
		if n <= 0 || n > 99 {
			slog.Error("请输入合法的入住者数量")
		} else {
			cnt := 0
			for i := 1; i <= n; i++ {
				if err := repo.CreateResident(utils.GenerateRandomResident(floor, i)); err != nil {
					slog.Error("无法插入入住者", slog.String("error", err.Error()))
					continue
				}

				cnt++
			}

			slog.Info("插入入住者成功", slog.Int("count", cnt))
		}
	case 3:
		seed.SeedResidentsFromFile(repo, cfg.Seed.ResidentsFile)
	case 4:
		if cfg.Seed.RecordDays <= 0 {
			slog.Error("请设置合法的记录天数")
			return
		}
		seed.SeedRandomRecords(repo, cfg.Seed.RecordDays, loc)
	default:
		slog.Error("指定的操作非法")
	}
}
