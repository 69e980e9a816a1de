package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrax/infra-engine/internal/types"
)

const cleanFixture = `
resource "aws_s3_bucket" "assets" {
  bucket = "assets"
}

resource "aws_db_instance" "main" {
  engine            = "postgres"
  storage_encrypted = true
}
`

func TestAnalyzeCleanCodeScoresFull(t *testing.T) {
	findings, score := Analyze(cleanFixture)
	assert.Empty(t, findings)
	assert.Equal(t, 100, score)
}

func TestAnalyzeHardcodedSecret(t *testing.T) {
	code := `
resource "aws_db_instance" "main" {
  password = "hunter2"
}
`
	findings, score := Analyze(code)
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityCritical, findings[0].Severity)
	assert.Equal(t, "aws_db_instance.main", findings[0].Resource)
	assert.Equal(t, 70, score)
}

func TestAnalyzeVariableReferenceIsNotASecret(t *testing.T) {
	code := `
resource "aws_db_instance" "main" {
  password = "${var.db_password}"
}
`
	findings, _ := Analyze(code)
	assert.Empty(t, findings)
}

func TestAnalyzeOpenCIDR(t *testing.T) {
	code := `
resource "aws_security_group" "web" {
  ingress {
    cidr_blocks = ["0.0.0.0/0"]
  }
}
`
	findings, score := Analyze(code)
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityHigh, findings[0].Severity)
	assert.Equal(t, "aws_security_group.web", findings[0].Resource)
	assert.Equal(t, 80, score)
}

func TestAnalyzeDisabledEncryption(t *testing.T) {
	code := `
resource "aws_ebs_volume" "data" {
  encrypted = false
}
`
	findings, _ := Analyze(code)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "Encryption at rest")
}

func TestAnalyzeStacksFindingsAndFloorsScore(t *testing.T) {
	code := `
resource "aws_s3_bucket" "open" {
  acl    = "public-read"
  secret = "abc123"
}

resource "aws_security_group" "all" {
  ingress { cidr_blocks = ["0.0.0.0/0"] }
}

resource "aws_instance" "web" {
  user_data = "curl http://internal/bootstrap"
  root_block_device { encrypted = false }
}

resource "aws_db_instance" "db" {
  deletion_protection = false
}
`
	findings, score := Analyze(code)
	assert.GreaterOrEqual(t, len(findings), 5)
	assert.Equal(t, 0, score)
}

func TestAnalyzeEachRuleFiresOnce(t *testing.T) {
	code := `
resource "a" "one" { cidr_blocks = ["0.0.0.0/0"] }
resource "a" "two" { cidr_blocks = ["0.0.0.0/0"] }
`
	findings, score := Analyze(code)
	require.Len(t, findings, 1)
	assert.Equal(t, 80, score)
}

func TestValidateHCLAcceptsWellFormedTerraform(t *testing.T) {
	findings := ValidateHCL(cleanFixture)
	assert.Empty(t, findings)
}

func TestValidateHCLReportsSyntaxErrors(t *testing.T) {
	findings := ValidateHCL(`resource "aws_instance" "web" {`)
	require.NotEmpty(t, findings)
	assert.Equal(t, types.SeverityHigh, findings[0].Severity)
	assert.NotEmpty(t, findings[0].Message)
}
