package planetscale

import (
	"database/sql"

	"github.com/navbryce/next-social-be/config"
	db2 "github.com/navbryce/next-social-be/db"
	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/mysql"
)

type PlanetScaleDB struct {
	*PostDB
	*UserDB
	*InteractionDB
	*FollowDB
	*DirectDB
	*NotificationDB
	sess  db.Session
	sqlDB *sql.DB
}

var _ db2.Database = (*PlanetScaleDB)(nil)

func GetDatabase(cfg *config.DBConfig) (*PlanetScaleDB, error) {
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxConns)
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetConnMaxIdleTime(0)

	sess, err := mysql.New(sqlDB)
	if err != nil {
		return nil, err
	}

	return &PlanetScaleDB{
		PostDB:         getPostDB(sess),
		UserDB:         getUserDB(sess),
		InteractionDB:  getInteractionDB(sess),
		FollowDB:       getFollowDB(sess),
		DirectDB:       getDirectDB(sess),
		NotificationDB: getNotificationDB(sess),
		sess:           sess,
		sqlDB:          sqlDB,
	}, nil
}

func (psdb *PlanetScaleDB) GetSQLDB() *sql.DB {
	return psdb.sqlDB
}

func (psdb *PlanetScaleDB) Close() error {
	return psdb.sess.Close()
}
