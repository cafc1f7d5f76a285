/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/smartair/server"
)

// ServeCmd represents the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve views to the web front end over HTTP and websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1 << 16,
		}
		if viper.GetBool("anyOrigin") {
			upgrader.CheckOrigin = func(r *http.Request) bool { return true }
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return server.NewServer(viper.GetString("addr"), upgrader, pipelineConfig()).Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(ServeCmd)
	ServeCmd.Flags().String("addr", ":8050", "address to listen on")
	ServeCmd.Flags().Bool("anyOrigin", false, "accept websocket connections from any origin")
	for _, name := range []string{"addr", "anyOrigin"} {
		if err := viper.BindPFlag(name, ServeCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}
