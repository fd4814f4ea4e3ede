package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "employee":
		handleEmployee(args)
	case "team":
		handleTeam(args)
	case "logs":
		listLogs(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// envelope mirrors the API's response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: hrms auth <register|login|logout|who>")
		return
	}

	switch args[0] {
	case "register":
		registerOrg(args[1:])
	case "login":
		loginOrg(args[1:])
	case "logout":
		logoutOrg()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleEmployee(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: hrms employee <list|create|delete>")
		return
	}

	switch args[0] {
	case "list":
		listEmployees()
	case "create":
		createEmployee(args[1:])
	case "delete":
		deleteEmployee(args[1:])
	default:
		fmt.Printf("unknown employee command: %s\n", args[0])
	}
}

func handleTeam(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: hrms team <list|create|assign|unassign>")
		return
	}

	switch args[0] {
	case "list":
		listTeams()
	case "create":
		createTeam(args[1:])
	case "assign":
		assignEmployee(args[1:], "/teams/assign")
	case "unassign":
		assignEmployee(args[1:], "/teams/unassign")
	default:
		fmt.Printf("unknown team command: %s\n", args[0])
	}
}

// Auth commands
func registerOrg(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "organization name")
	email := fs.String("email", "", "organization email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		fmt.Println("Error: name, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name, "email": *email, "password": *password}
	env, status, err := post("/auth/register", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusCreated {
		fmt.Printf("✗ Registration failed: %s\n", env.Message)
		return
	}

	var data struct {
		Token string `json:"token"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Token != "" {
		saveToken(data.Token)
	}
	fmt.Printf("✓ Organization registered: %s\n", *email)
}

func loginOrg(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "organization email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	env, status, err := post("/auth/login", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusOK {
		fmt.Printf("✗ Login failed: %s\n", env.Message)
		return
	}

	var data struct {
		Token string `json:"token"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Token != "" {
		saveToken(data.Token)
		fmt.Printf("✓ Logged in as: %s\n", *email)
	}
}

func logoutOrg() {
	// Best effort: also revoke server-side when a denylist is configured.
	post("/auth/logout", nil)
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	env, status, err := get("/auth/profile")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusOK {
		fmt.Println("Not logged in")
		return
	}

	var org struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	json.Unmarshal(env.Data, &org)
	fmt.Printf("✓ Logged in as %s <%s>\n", org.Name, org.Email)
}

// Employee commands
func listEmployees() {
	env, status, err := get("/employees")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var employees []struct {
		ID        int64   `json:"id"`
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		Email     string  `json:"email"`
		Position  *string `json:"position"`
	}
	json.Unmarshal(env.Data, &employees)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPOSITION")
	for _, e := range employees {
		position := ""
		if e.Position != nil {
			position = *e.Position
		}
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\n", e.ID, e.FirstName, e.LastName, e.Email, position)
	}
	w.Flush()
}

func createEmployee(args []string) {
	fs := flag.NewFlagSet("employee create", flag.ExitOnError)
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	email := fs.String("email", "", "email")
	position := fs.String("position", "", "position (optional)")
	hireDate := fs.String("hire-date", "", "hire date YYYY-MM-DD (optional)")

	fs.Parse(args)

	if *firstName == "" || *lastName == "" || *email == "" {
		fmt.Println("Error: first-name, last-name, and email are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"first_name": *firstName,
		"last_name":  *lastName,
		"email":      *email,
	}
	if *position != "" {
		payload["position"] = *position
	}
	if *hireDate != "" {
		payload["hire_date"] = *hireDate
	}

	env, status, err := post("/employees", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusCreated {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}
	fmt.Printf("✓ Employee created: %s %s\n", *firstName, *lastName)
}

func deleteEmployee(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: hrms employee delete <employee-id>")
		return
	}

	env, status, err := del("/employees/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}
	fmt.Printf("✓ Employee %s deleted\n", args[0])
}

// Team commands
func listTeams() {
	env, status, err := get("/teams")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var teams []struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		MemberCount int     `json:"member_count"`
	}
	json.Unmarshal(env.Data, &teams)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tDESCRIPTION")
	for _, t := range teams {
		description := ""
		if t.Description != nil {
			description = *t.Description
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", t.ID, t.Name, t.MemberCount, description)
	}
	w.Flush()
}

func createTeam(args []string) {
	fs := flag.NewFlagSet("team create", flag.ExitOnError)
	name := fs.String("name", "", "team name")
	description := fs.String("description", "", "description (optional)")

	fs.Parse(args)

	if *name == "" {
		fmt.Println("Error: name is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name}
	if *description != "" {
		payload["description"] = *description
	}

	env, status, err := post("/teams", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusCreated {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}
	fmt.Printf("✓ Team created: %s\n", *name)
}

func assignEmployee(args []string, path string) {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	employeeID := fs.Int64("employee", 0, "employee ID")
	teamID := fs.Int64("team", 0, "team ID")

	fs.Parse(args)

	if *employeeID == 0 || *teamID == 0 {
		fmt.Println("Error: employee and team are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]int64{"employee_id": *employeeID, "team_id": *teamID}
	env, status, err := post(path, payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusOK && status != http.StatusCreated {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}
	fmt.Printf("✓ %s\n", env.Message)
}

// Logs command
func listLogs(args []string) {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	limit := fs.Int("limit", 0, "max entries (default: server default)")

	fs.Parse(args)

	path := "/logs"
	if *limit > 0 {
		path = fmt.Sprintf("/logs?limit=%d", *limit)
	}

	env, status, err := get(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var entries []struct {
		ID        int64  `json:"id"`
		Action    string `json:"action"`
		CreatedAt string `json:"created_at"`
	}
	json.Unmarshal(env.Data, &entries)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tACTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.ID, e.CreatedAt, e.Action)
	}
	w.Flush()
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("HRMS_API"); url != "" {
		return url
	}
	return "http://localhost:5000/api"
}

func get(path string) (*envelope, int, error) {
	req, err := http.NewRequest(http.MethodGet, getAPIURL()+path, nil)
	if err != nil {
		return nil, 0, err
	}
	return do(req)
}

func post(path string, payload any) (*envelope, int, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, 0, err
		}
	}
	req, err := http.NewRequest(http.MethodPost, getAPIURL()+path, &body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req)
}

func del(path string) (*envelope, int, error) {
	req, err := http.NewRequest(http.MethodDelete, getAPIURL()+path, nil)
	if err != nil {
		return nil, 0, err
	}
	return do(req)
}

func do(req *http.Request) (*envelope, int, error) {
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var env envelope
	json.NewDecoder(resp.Body).Decode(&env)
	return &env, resp.StatusCode, nil
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.hrms/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.hrms", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	if token := loadToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`HRMS CLI

Usage:
  hrms <command> [options]

Commands:
  auth      Organization authentication (register, login, logout, who)
  employee  Employee operations (list, create, delete)
  team      Team operations (list, create, assign, unassign)
  logs      Show the audit trail
  help      Show this help message

Environment Variables:
  HRMS_API    API endpoint (default: http://localhost:5000/api)

Examples:
  hrms auth register -name "Acme Corp" -email admin@acme.com -password secret1
  hrms auth login -email admin@acme.com -password secret1
  hrms employee create -first-name Ada -last-name Lovelace -email ada@acme.com
  hrms team assign -employee 1 -team 2
  hrms logs -limit 50
`)
}
