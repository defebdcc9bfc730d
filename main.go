package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/federation"
	"github.com/mammut-social/mammut/util"
	"github.com/mammut-social/mammut/web"
)

func main() {

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Println("Configuration: ")
	fmt.Println(util.PrettyPrint(conf))

	database, err := db.Open(util.ResolveFilePath(conf.Conf.DbPath))
	if err != nil {
		log.Fatalln(err)
	}
	defer database.Close()

	registry := federation.NewNodeRegistry(database)
	if err := registerLocalNode(conf, database); err != nil {
		log.Fatalln(err)
	}

	startServing(conf, database, registry)
}

// registerLocalNode makes sure the registry contains this deployment's own
// host so frontend requests can be told apart from peer traffic.
func registerLocalNode(conf *util.AppConfig, database *db.DB) error {
	host, err := federation.HostOf(conf.Conf.NodeHost)
	if err != nil {
		return fmt.Errorf("invalid nodeHost %q: %w", conf.Conf.NodeHost, err)
	}
	return database.SaveNode(&domain.Node{Host: host, IsLocal: true})
}

func startServing(conf *util.AppConfig, database *db.DB, registry *federation.NodeRegistry) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := web.Router(conf, database, registry); err != nil {
			log.Fatalln(err)
		}
	}()

	<-done
	log.Println("Stopping federation server")
}
