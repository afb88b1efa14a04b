// Interactive terminal chat against the same agent the web UI uses.
// Handy for poking at the data without starting the server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/garjemarathi/community-agent/internal/config"
	"github.com/garjemarathi/community-agent/internal/services"
	"github.com/garjemarathi/community-agent/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}

	st := store.OpenFile(cfg.DataFile)

	scraper := services.NewScraperService(cfg.CommunityURL)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	community := scraper.ScrapeHomepage(ctx)
	cancel()

	llm, err := services.NewLLMService(cfg, community)
	if err != nil {
		log.Fatal("Failed to create LLM client:", err)
	}
	agent := services.NewAgentService(st, llm, community)

	stats, _ := st.Stats()
	fmt.Println("🤖 Garje Marathi AI Assistant")
	fmt.Printf("Model: %s\n", llm.Model)
	fmt.Printf("Community: %s\n", community.Name)
	fmt.Printf("Members: %d | Jobs: %d\n", stats.TotalMembers, stats.TotalJobs)
	fmt.Println("\n💡 Try asking:")
	fmt.Println("  - 'Find member [name]'")
	fmt.Println("  - 'Show jobs in [location]'")
	fmt.Println("  - 'How many members?'")
	fmt.Println("  - 'What is Garje Marathi?'")
	fmt.Println("\nType 'exit' to quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			fmt.Println("\n👋 Thank you for using Garje Marathi AI Assistant!")
			break
		}

		fmt.Printf("\nAssistant: %s\n", agent.Answer(context.Background(), input, ""))
	}
}
