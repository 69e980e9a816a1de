package codegen

import (
	"fmt"
	"strings"

	"github.com/infrax/infra-engine/internal/types"
)

func gcpTerraform(selection *types.ServiceSelection, environment, projectName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`terraform {
  required_version = ">= 1.0"
  required_providers {
    google = {
      source  = "hashicorp/google"
      version = "~> 5.0"
    }
  }
}

provider "google" {
  project = var.project_id
  region  = var.region
}

variable "project_id" {
  description = "GCP project id"
  type        = string
}

variable "region" {
  description = "GCP region"
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
  common_labels = {
    environment = var.environment
    project     = var.project_name
    managed_by  = "terraform"
  }
}
`, selection.Region, environment, projectName))

	names := nameCounter{}
	for _, svc := range selection.Services {
		name := names.next(svc.Category)
		switch svc.Category {
		case types.CategoryCompute:
			b.WriteString(gcpTerraformInstance(name, svc))
		case types.CategoryStorage:
			b.WriteString(gcpTerraformBucket(name, svc))
		case types.CategoryDatabase:
			b.WriteString(gcpTerraformDatabase(name, svc))
		case types.CategoryNetworking:
			b.WriteString(gcpTerraformNetwork(name))
		case types.CategoryContainer:
			b.WriteString(gcpTerraformGKE(name, svc))
		}
	}

	return b.String()
}

func gcpTerraformInstance(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "google_compute_instance" %q {
  name         = "${var.project_name}-%s"
  machine_type = %q
  zone         = "${var.region}-a"

  boot_disk {
    initialize_params {
      image = "debian-cloud/debian-12"
    }
  }

  network_interface {
    network = "default"
  }

  labels = local.common_labels
}
`, name, name, svc.Attributes["instance_type"])
}

func gcpTerraformBucket(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "google_storage_bucket" %q {
  name          = "${var.project_name}-${var.environment}-%s"
  location      = var.region
  storage_class = %q

  uniform_bucket_level_access = true

  versioning {
    enabled = true
  }

  labels = local.common_labels
}
`, name, name, svc.Attributes["storage_class"])
}

func gcpTerraformDatabase(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "google_sql_database_instance" %q {
  name             = "${var.project_name}-${var.environment}-%s"
  database_version = %q
  region           = var.region

  settings {
    tier = %q

    backup_configuration {
      enabled                        = true
      point_in_time_recovery_enabled = true
    }

    ip_configuration {
      ipv4_enabled = false
    }
  }
}
`, name, name, svc.Attributes["engine"], svc.Attributes["instance_class"])
}

func gcpTerraformNetwork(name string) string {
	return fmt.Sprintf(`
resource "google_compute_network" %q {
  name                    = "${var.project_name}-network"
  auto_create_subnetworks = false
}

resource "google_compute_subnetwork" "%s_app" {
  name          = "${var.project_name}-app-subnet"
  ip_cidr_range = "10.0.1.0/24"
  region        = var.region
  network       = google_compute_network.%s.id

  log_config {
    aggregation_interval = "INTERVAL_5_MIN"
    flow_sampling        = 0.5
    metadata             = "INCLUDE_ALL_METADATA"
  }
}
`, name, name, name)
}

func gcpTerraformGKE(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "google_container_cluster" %q {
  name     = "${var.project_name}-${var.environment}-gke"
  location = var.region

  initial_node_count       = %s
  remove_default_node_pool = false

  node_config {
    machine_type = "e2-medium"
  }

  resource_labels = local.common_labels
}
`, name, svc.Attributes["node_count"])
}
