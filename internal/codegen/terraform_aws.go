package codegen

import (
	"fmt"
	"strings"

	"github.com/infrax/infra-engine/internal/types"
)

func awsTerraform(selection *types.ServiceSelection, environment, projectName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`terraform {
  required_version = ">= 1.0"
  required_providers {
    aws = {
      source  = "hashicorp/aws"
      version = "~> 5.0"
    }
  }
}

provider "aws" {
  region = var.region
}

variable "region" {
  description = "AWS region"
  type        = string
  default     = %q
}

variable "environment" {
  description = "Environment name"
  type        = string
  default     = %q
}

variable "project_name" {
  description = "Project name"
  type        = string
  default     = %q
}

locals {
  common_tags = {
    Environment = var.environment
    Project     = var.project_name
    ManagedBy   = "terraform"
  }
}
`, selection.Region, environment, projectName))

	names := nameCounter{}
	for _, svc := range selection.Services {
		name := names.next(svc.Category)
		switch svc.Category {
		case types.CategoryCompute:
			b.WriteString(awsTerraformInstance(name, svc))
		case types.CategoryStorage:
			b.WriteString(awsTerraformBucket(name))
		case types.CategoryDatabase:
			b.WriteString(awsTerraformDatabase(name, svc))
		case types.CategoryNetworking:
			b.WriteString(awsTerraformVPC(name, svc))
		case types.CategoryContainer:
			b.WriteString(awsTerraformECS(name, svc))
		}
	}

	return b.String()
}

func awsTerraformInstance(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "aws_instance" %q {
  ami           = data.aws_ami.%s.id
  instance_type = %q

  root_block_device {
    encrypted = true
  }

  tags = merge(local.common_tags, {
    Name = "${var.project_name}-%s"
  })
}

data "aws_ami" %q {
  most_recent = true
  owners      = ["amazon"]

  filter {
    name   = "name"
    values = ["al2023-ami-*-x86_64"]
  }
}
`, name, name, svc.Attributes["instance_type"], name, name)
}

func awsTerraformBucket(name string) string {
	return fmt.Sprintf(`
resource "aws_s3_bucket" %q {
  bucket = "${var.project_name}-${var.environment}-%s"

  tags = local.common_tags
}

resource "aws_s3_bucket_server_side_encryption_configuration" %q {
  bucket = aws_s3_bucket.%s.id

  rule {
    apply_server_side_encryption_by_default {
      sse_algorithm = "aws:kms"
    }
  }
}

resource "aws_s3_bucket_public_access_block" %q {
  bucket                  = aws_s3_bucket.%s.id
  block_public_acls       = true
  block_public_policy     = true
  ignore_public_acls      = true
  restrict_public_buckets = true
}
`, name, name, name, name, name, name)
}

func awsTerraformDatabase(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "aws_db_instance" %q {
  identifier        = "${var.project_name}-${var.environment}-%s"
  engine            = %q
  instance_class    = %q
  allocated_storage = 20

  storage_encrypted       = true
  backup_retention_period = 7
  skip_final_snapshot     = true

  username = "dbadmin"
  password = random_password.%s.result

  tags = local.common_tags
}

resource "random_password" %q {
  length  = 24
  special = false
}
`, name, name, svc.Attributes["engine"], svc.Attributes["instance_class"], name, name)
}

func awsTerraformVPC(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "aws_vpc" %q {
  cidr_block           = %q
  enable_dns_support   = true
  enable_dns_hostnames = true

  tags = merge(local.common_tags, {
    Name = "${var.project_name}-vpc"
  })
}

resource "aws_subnet" "%s_public" {
  vpc_id     = aws_vpc.%s.id
  cidr_block = cidrsubnet(aws_vpc.%s.cidr_block, 8, 1)

  tags = local.common_tags
}

resource "aws_flow_log" %q {
  vpc_id               = aws_vpc.%s.id
  traffic_type         = "ALL"
  log_destination_type = "s3"
  log_destination      = "arn:aws:s3:::${var.project_name}-flow-logs"
}
`, name, svc.Attributes["cidr_block"], name, name, name, name, name)
}

func awsTerraformECS(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "aws_ecs_cluster" %q {
  name = "${var.project_name}-${var.environment}"

  tags = local.common_tags
}

resource "aws_ecs_task_definition" %q {
  family                   = "${var.project_name}-%s"
  requires_compatibilities = ["FARGATE"]
  network_mode             = "awsvpc"
  cpu                      = %q
  memory                   = %q

  container_definitions = jsonencode([
    {
      name      = "app"
      image     = "public.ecr.aws/nginx/nginx:stable"
      essential = true
      portMappings = [
        {
          containerPort = %s
        }
      ]
    }
  ])
}

resource "aws_ecs_service" %q {
  name            = "${var.project_name}-%s"
  cluster         = aws_ecs_cluster.%s.id
  task_definition = aws_ecs_task_definition.%s.arn
  desired_count   = 1
  launch_type     = "FARGATE"
}
`, name, name, name, svc.Attributes["cpu"], svc.Attributes["memory"], svc.Attributes["container_port"], name, name, name, name)
}
